package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
	"github.com/jwalitptl/eyecare-portal/pkg/validator"
)

const maxResponseBytes = 10 << 20

// DefaultLocation is used by GetDoctorsNearMe when no coordinates are given.
var DefaultLocation = Coordinates{Latitude: 12.9716, Longitude: 77.5946}

type Config struct {
	BaseURL string
	// FallbackLocation replaces DefaultLocation when non-zero.
	FallbackLocation Coordinates
	// BackfillConfidence fills missing history confidences with an
	// estimate flagged as such.
	BackfillConfidence bool
}

// Client talks to the screening backend. It never retries and imposes no
// timeout of its own; cancellation comes from the caller's context.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	validator validator.Validator
	fallback  Coordinates
	backfill  bool
	estimate  func() float64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithConfidenceSource replaces the uniform [0,1) source behind backfilled
// confidences.
func WithConfidenceSource(fn func() float64) Option {
	return func(c *Client) { c.estimate = fn }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base URL %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		logger:    zerolog.Nop(),
		validator: validator.New(),
		fallback:  DefaultLocation,
		backfill:  cfg.BackfillConfidence,
		estimate:  rand.Float64,
	}
	if cfg.FallbackLocation != (Coordinates{}) {
		c.fallback = cfg.FallbackLocation
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// resolve turns a possibly relative reference returned by the backend
// into an absolute URL.
func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do sends req and returns the body of a 2xx response. Non-2xx statuses
// and network failures become AppErrors.
func (c *Client) do(req *http.Request, name string) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	c.observe(name, start, resp)
	if err != nil {
		return nil, errors.NewTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewTransport(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewUpstreamStatus(resp.StatusCode, serverMessage(body))
	}
	return body, nil
}

func (c *Client) observe(name string, start time.Time, resp *http.Response) {
	if c.metrics == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.UpstreamRequests.WithLabelValues(name, metrics.StatusClass(status)).Inc()
	c.metrics.UpstreamLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// decode unmarshals body into out and validates it against its schema.
func (c *Client) decode(name string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewMalformed(name, err)
	}
	if err := c.validator.Validate(out); err != nil {
		return errors.NewMalformed(name, err)
	}
	return nil
}

// fail logs err for operation op and returns it unchanged.
func (c *Client) fail(op string, err error) error {
	ev := c.logger.Error()
	switch errors.CodeOf(err) {
	case errors.ErrValidation, errors.ErrNotAuthenticated:
		ev = c.logger.Warn()
	}
	ev.Err(err).Str("operation", op).Msg("upstream call failed")
	return err
}

// requireSession returns the stored identifier or ErrNotAuthenticated.
func requireSession(ctx context.Context, sess *session.Session) (string, error) {
	if sess == nil {
		return "", errors.NewNotAuthenticated()
	}
	id, ok := sess.Read(ctx)
	if !ok {
		return "", errors.NewNotAuthenticated()
	}
	return id, nil
}

// serverMessage extracts the error text of a failed response, if any.
func serverMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &envelope); err != nil {
		return ""
	}
	switch {
	case envelope.Error != "":
		return envelope.Error
	case envelope.Detail != "":
		return envelope.Detail
	default:
		return envelope.Message
	}
}

// IsNotAuthenticated reports whether err is the missing-session error.
func IsNotAuthenticated(err error) bool {
	return stderrors.Is(err, errors.NotAuthenticated)
}
