package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls chan time.Duration
	rows  int64
	err   error
}

func (c *fakeCleaner) Cleanup(_ context.Context, retention time.Duration) (int64, error) {
	c.calls <- retention
	return c.rows, c.err
}

func TestAuditCleanupWorker_RunOnce(t *testing.T) {
	cleaner := &fakeCleaner{calls: make(chan time.Duration, 1), rows: 4}
	w := NewAuditCleanupWorker(cleaner, 90, time.Hour, zerolog.Nop())

	rows, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows)
	assert.Equal(t, 90*24*time.Hour, <-cleaner.calls)
}

func TestAuditCleanupWorker_RunOnceError(t *testing.T) {
	cleaner := &fakeCleaner{calls: make(chan time.Duration, 1), err: errors.New("db down")}
	w := NewAuditCleanupWorker(cleaner, 30, time.Hour, zerolog.Nop())

	_, err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cleanup audit events")
}

func TestAuditCleanupWorker_StartRunsImmediately(t *testing.T) {
	cleaner := &fakeCleaner{calls: make(chan time.Duration, 4)}
	w := NewAuditCleanupWorker(cleaner, 7, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	select {
	case retention := <-cleaner.calls:
		assert.Equal(t, 7*24*time.Hour, retention)
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup did not run")
	}
}
