package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Cleaner deletes audit events older than the retention window.
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

type AuditCleanupWorker struct {
	cleaner   Cleaner
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	scheduler *gocron.Scheduler
}

func NewAuditCleanupWorker(cleaner Cleaner, retentionDays int, interval time.Duration, logger zerolog.Logger) *AuditCleanupWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AuditCleanupWorker{
		cleaner:   cleaner,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the cleanup, running it once immediately, and returns.
// The job stops when ctx is done or Stop is called.
func (w *AuditCleanupWorker) Start(ctx context.Context) error {
	w.scheduler.SingletonModeAll()
	if _, err := w.scheduler.Every(w.interval).Do(func() {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error().Err(err).Msg("Error cleaning up audit events")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	w.scheduler.StartAsync()
	w.logger.Info().
		Dur("interval", w.interval).
		Dur("retention", w.retention).
		Msg("Audit cleanup worker started")

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

func (w *AuditCleanupWorker) Stop() {
	if w.scheduler.IsRunning() {
		w.scheduler.Stop()
		w.logger.Info().Msg("Audit cleanup worker stopped")
	}
}

// RunOnce performs a single cleanup pass.
func (w *AuditCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	rows, err := w.cleaner.Cleanup(ctx, w.retention)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit events: %w", err)
	}

	w.logger.Info().Int64("rows", rows).Dur("retention", w.retention).Msg("Cleaned up audit events")
	return rows, nil
}
