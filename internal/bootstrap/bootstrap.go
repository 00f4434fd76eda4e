// Package bootstrap wires configuration into a backend store and the
// billing services shared by the binaries.
package bootstrap

import (
	"database/sql"
	"fmt"

	"lounge-pos-billing/internal/config"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/exchange"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/repository"
	"lounge-pos-billing/internal/repository/postgres"
	"lounge-pos-billing/internal/repository/remote"
	"lounge-pos-billing/internal/service"
)

// App holds the services built from one configuration
type App struct {
	Store   *repository.Store
	Rates   service.RateService
	Billing service.BillingService

	db *sql.DB
}

// New opens the configured backend and builds the services on top of it
func New(cfg *config.Config) (*App, error) {
	store, db, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	usd, lbp := cfg.GetSyncTolerance()
	rates := service.NewRateService(store.RateRepository, exchange.Tolerance{USD: usd, LBP: lbp})
	billing := service.NewBillingService(
		store.SessionRepository,
		store.DiscountRepository,
		store.PaymentRepository,
		rates,
		domain.PaymentMethod(cfg.Billing.PaymentMethod),
	)

	return &App{Store: store, Rates: rates, Billing: billing, db: db}, nil
}

// Close releases the database handle, if any
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// OpenStore returns the repositories of the configured backend. The
// *sql.DB is nil for the http backend.
func OpenStore(cfg *config.Config) (*repository.Store, *sql.DB, error) {
	switch cfg.Backend.Type {
	case config.BackendHTTP:
		logger.Info("Using POS API backend", "base_url", cfg.Backend.BaseURL, "timeout", cfg.GetBackendTimeout())
		return remote.NewStore(remote.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout())), nil, nil

	case config.BackendPostgres:
		logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database)
		return postgres.NewStore(db), db, nil
	}
	return nil, nil, fmt.Errorf("unknown backend type: %q", cfg.Backend.Type)
}
