package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/model"
	"github.com/jwalitptl/eyecare-portal/internal/repository"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
	"github.com/jwalitptl/eyecare-portal/pkg/security"
)

// Entry describes an action to record. Subject is the e-mail address the
// action concerns; only its hash is stored.
type Entry struct {
	Action    string
	Outcome   string
	Subject   string
	PatientID string
	IPAddress string
	UserAgent string
	RequestID string
}

type Service struct {
	repo    repository.AuditRepository
	hasher  security.SubjectHasher
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.AuditRepository, hasher security.SubjectHasher, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Log builds the event for entry and stores it.
func (s *Service) Log(ctx context.Context, entry Entry) error {
	event := &model.AuditEvent{
		ID:        uuid.New(),
		Action:    entry.Action,
		Outcome:   entry.Outcome,
		PatientID: entry.PatientID,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		RequestID: entry.RequestID,
		CreatedAt: s.now().UTC(),
	}
	if s.hasher != nil {
		event.SubjectHash = s.hasher.Hash(entry.Subject)
	}

	err := s.repo.Create(ctx, event)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.AuditEvents.WithLabelValues(entry.Action, status).Inc()
	}
	return err
}

// Cleanup deletes events older than retention.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.Cleanup(ctx, s.now().Add(-retention))
}
