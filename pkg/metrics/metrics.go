// Package metrics exposes Prometheus collectors for the core operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpensesCreated counts successfully applied expenses by split type.
	ExpensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitkit_expenses_created_total",
		Help: "Number of expenses applied to a ledger, by split type.",
	}, []string{"split_type"})

	// SettlementsRecorded counts successfully applied settlements.
	SettlementsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitkit_settlements_recorded_total",
		Help: "Number of settlements applied to a ledger.",
	})

	// SimplifyRuns counts debt simplification runs by outcome.
	SimplifyRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitkit_simplify_runs_total",
		Help: "Number of debt simplification runs, by outcome.",
	}, []string{"outcome"})

	// HTTPDuration observes request latency by method, route and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitkit_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
