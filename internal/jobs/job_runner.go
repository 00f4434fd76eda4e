package jobs

import (
	"context"
	"fmt"
	"time"

	"lounge-pos-billing/internal/config"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/service"
)

// Job names accepted by RunJob
const (
	JobRefreshExchangeRate = "refresh-exchange-rate"
)

// jobTimeout bounds a single job execution
const jobTimeout = 20 * time.Second

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rates  service.RateService
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(rates service.RateService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		rates:  rates,
		config: cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Debug("Starting job", "job", jobName)
	jobFunc()
	logger.Debug("Job completed", "job", jobName)
}

// RefreshExchangeRate pulls the current LBP rate. A failed pull keeps the
// previous rate in service.
func (jr *JobRunner) RefreshExchangeRate() {
	jr.runWithRecovery(JobRefreshExchangeRate, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := jr.rates.Refresh(ctx); err != nil {
			logger.Error("Failed to refresh exchange rate", "error", err)
		}
	})
}

// RunJob runs one job by name (for manual execution)
func (jr *JobRunner) RunJob(name string) error {
	switch name {
	case JobRefreshExchangeRate:
		jr.RefreshExchangeRate()
	default:
		return fmt.Errorf("unknown job: %s", name)
	}
	return nil
}
