package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "lounge-pos-billing/internal/api/http"
	"lounge-pos-billing/internal/bootstrap"
	"lounge-pos-billing/internal/config"
	"lounge-pos-billing/internal/jobs"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.SetCronLevel(cfg.Log.CronLevel)
	logger.Info("Starting POS billing server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "backend", cfg.Backend.Type)

	app, err := bootstrap.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		log.Fatalf("Failed to initialize backend: %v", err)
	}
	defer app.Close()

	// First rate pull; the scheduler keeps it fresh afterwards
	jobRunner := jobs.NewJobRunner(app.Rates, cfg)
	jobRunner.RefreshExchangeRate()

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Set up HTTP API
	router := mux.NewRouter()
	handler := httpapi.NewBillingHandler(app.Rates, app.Billing, httpapi.NewMetrics(prometheus.DefaultRegisterer))
	httpapi.RegisterRoutes(router, handler, prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}
}
