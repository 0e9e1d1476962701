package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
)

// UserIDKey is the single well-known key holding the session identifier
// of a standalone client.
const UserIDKey = "userId"

var (
	// ErrNotFound is returned by a Backend when the key holds no value.
	ErrNotFound = errors.New("session key not found")
	// ErrEmptyIdentifier is returned when storing an empty identifier.
	ErrEmptyIdentifier = errors.New("session identifier is empty")
)

// Backend is the persistent key/value storage behind a Session.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Name() string
}

// Session holds one opaque patient identifier. The identifier is not
// validated, encrypted or expired here; trust is entirely server side.
type Session struct {
	backend Backend
	key     string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New binds a session to key in backend. m may be nil.
func New(backend Backend, key string, logger zerolog.Logger, m *metrics.Metrics) *Session {
	return &Session{
		backend: backend,
		key:     key,
		logger:  logger.With().Str("session_backend", backend.Name()).Logger(),
		metrics: m,
	}
}

// Key returns the storage key of this session.
func (s *Session) Key() string {
	return s.key
}

// Store writes id, overwriting any previous value.
func (s *Session) Store(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyIdentifier
	}
	err := s.backend.Set(ctx, s.key, id)
	s.observe("store", err)
	if err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to store session identifier")
		return fmt.Errorf("failed to store session identifier: %w", err)
	}
	return nil
}

// Read returns the stored identifier. Backend failures are logged and
// reported as absent.
func (s *Session) Read(ctx context.Context) (string, bool) {
	id, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.observe("read", nil)
		return "", false
	case err != nil:
		s.observe("read", err)
		s.logger.Warn().Err(err).Str("key", s.key).Msg("session read failed, treating as absent")
		return "", false
	}
	s.observe("read", nil)
	return id, id != ""
}

// Clear removes the identifier.
func (s *Session) Clear(ctx context.Context) error {
	err := s.backend.Delete(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.observe("clear", err)
	if err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to clear session identifier")
		return fmt.Errorf("failed to clear session identifier: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether an identifier is present.
func (s *Session) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.Read(ctx)
	return ok
}

func (s *Session) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.SessionOperations.WithLabelValues(s.backend.Name(), op, status).Inc()
}

// Provider hands out sessions scoped to a browser.
type Provider struct {
	backend Backend
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewProvider(backend Backend, logger zerolog.Logger, m *metrics.Metrics) *Provider {
	return &Provider{
		backend: backend,
		logger:  logger,
		metrics: m,
	}
}

// ForBrowser returns the session of the browser identified by browserID.
func (p *Provider) ForBrowser(browserID string) *Session {
	return New(p.backend, BrowserKey(browserID), p.logger, p.metrics)
}

// Backend exposes the underlying storage, e.g. for readiness checks.
func (p *Provider) Backend() Backend {
	return p.backend
}

// BrowserKey is the storage key of a browser's session identifier.
func BrowserKey(browserID string) string {
	return "portal:session:" + browserID + ":" + UserIDKey
}
