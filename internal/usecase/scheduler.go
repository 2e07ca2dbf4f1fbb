package usecase

import (
	"context"
	"log/slog"
	"time"

	"StarlinkWatch/internal/ports"
)

// Scheduler wires the ticker driver with both pipelines for watch mode.
type Scheduler struct {
	driver  ports.Scheduler
	metrics *MetricsPipeline
	digest  *DigestPipeline
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, metrics *MetricsPipeline, digest *DigestPipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, metrics: metrics, digest: digest, logger: logger}
}

// Start registers one tick job: metrics first, then the gated digest.
// A failing run is logged and the next tick retries.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.Tick(ctx, trigger)
	})
}

// Tick runs one cycle synchronously.
func (s *Scheduler) Tick(ctx context.Context, trigger time.Time) {
	if s.logger != nil {
		s.logger.Debug("scheduler tick", "at", trigger.Format(time.RFC3339))
	}
	if s.metrics != nil {
		if _, err := s.metrics.Run(ctx); err != nil && s.logger != nil {
			s.logger.Error("metrics run failed", "error", err)
		}
	}
	if s.digest != nil {
		if _, err := s.digest.Run(ctx); err != nil && s.logger != nil {
			s.logger.Error("digest run failed", "error", err)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
