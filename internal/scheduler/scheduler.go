// Package scheduler drives periodic catalog refreshes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/star/sattrack/internal/ingest"
)

// Runner is the refresh operation the scheduler drives on each tick.
// Satisfied by *ingest.Pipeline; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// Scheduler invokes a Runner immediately and then at a fixed interval until
// the context is canceled. A failed run is logged, never fatal: the next
// tick retries with a fresh feed snapshot.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Scheduler.
func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until ctx is canceled. Call it from a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", "interval_seconds", s.interval.Seconds())

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	report, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
		return
	}
	s.logger.Info("scheduled refresh complete",
		"run_id", report.RunID.String(),
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
	)
}
