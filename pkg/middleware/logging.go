// Package middleware provides the HTTP middleware shared by all routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/adhamsal/splitkit/pkg/metrics"
)

// RequestLogger logs every request outcome with method, path, status and
// duration. Server errors log at Error, client errors at Warn.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		}
		switch {
		case ww.Status() >= 500:
			slog.Error("request failed", attrs...)
		case ww.Status() >= 400:
			slog.Warn("request rejected", attrs...)
		default:
			slog.Info("request served", attrs...)
		}
	})
}

// Metrics records request latency in the HTTP duration histogram. The route
// label uses the chi route pattern so its cardinality stays bounded by the
// route table.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		metrics.HTTPDuration.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(ww.Status()),
		).Observe(time.Since(start).Seconds())
	})
}
