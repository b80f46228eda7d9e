package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/adhamsal/splitkit/internal/config"
	"github.com/adhamsal/splitkit/internal/expense"
	expensesplit "github.com/adhamsal/splitkit/internal/expense/split"
	"github.com/adhamsal/splitkit/internal/group"
	"github.com/adhamsal/splitkit/internal/settlement"
	"github.com/adhamsal/splitkit/internal/storage"
	"github.com/adhamsal/splitkit/internal/storage/memory"
	"github.com/adhamsal/splitkit/internal/storage/postgres"
	"github.com/adhamsal/splitkit/internal/storage/sqlite"
	"github.com/adhamsal/splitkit/pkg/logging"
	mw "github.com/adhamsal/splitkit/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()
	logger := slog.Default()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	logger.Info("storage ready", "driver", cfg.StorageDriver)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewFactory()

	// Group feature (owns the live ledgers)
	groupService := group.NewService(store, logger)
	groupHandler := group.NewHandler(groupService)

	// Expense feature (with split factory injected)
	expenseService := expense.NewService(store, groupService, splitFactory, logger)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementService := settlement.NewService(store, groupService, logger)
	settlementHandler := settlement.NewHandler(settlementService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.RequestLogger)
	r.Use(mw.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
	})

	logger.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// openStore builds the storage backend selected by configuration.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case storage.DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case storage.DriverPostgres:
		return postgres.New(cfg.DatabaseURL)
	case storage.DriverMemory:
		return memory.New(), nil
	default:
		return nil, storage.ErrUnknownDriver
	}
}
