package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/eyecare-portal/internal/model"
)

type (
	// AuditRepository persists portal audit events
	AuditRepository interface {
		Create(ctx context.Context, event *model.AuditEvent) error
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)
