package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Recorder records audit entries without blocking or failing the caller.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// AuditLogger writes entries through the service in the background.
type AuditLogger struct {
	service *Service
	logger  zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service, logger zerolog.Logger, timeout time.Duration) *AuditLogger {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuditLogger{
		service: service,
		logger:  logger,
		timeout: timeout,
	}
}

// Record stores entry asynchronously. The request context only contributes
// its values; its cancellation does not abort the write.
func (l *AuditLogger) Record(ctx context.Context, entry Entry) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		if err := l.service.Log(writeCtx, entry); err != nil {
			l.logger.Error().
				Err(err).
				Str("action", entry.Action).
				Str("request_id", entry.RequestID).
				Msg("Failed to record audit event")
		}
	}()
}

// LogSync stores entry and returns the repository error.
func (l *AuditLogger) LogSync(ctx context.Context, entry Entry) error {
	return l.service.Log(ctx, entry)
}

// Wait blocks until all pending writes finish.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}

type noopRecorder struct{}

// NewNoopRecorder returns a Recorder that drops every entry.
func NewNoopRecorder() Recorder {
	return noopRecorder{}
}

func (noopRecorder) Record(context.Context, Entry) {}
