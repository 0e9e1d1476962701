package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
)

const endpointReport = "/report"

// ReportFailure is the coarse category of a failed report request.
type ReportFailure string

const (
	ReportUnauthorized ReportFailure = "unauthorized"
	ReportUnavailable  ReportFailure = "unavailable"
	ReportFailed       ReportFailure = "failed"
)

// Message is the text shown to the user for the failure.
func (f ReportFailure) Message() string {
	switch f {
	case ReportUnauthorized:
		return "Your session has expired. Please sign in again."
	case ReportUnavailable:
		return "Report service is unavailable. Please try again later."
	default:
		return "Failed to generate report. Please try again."
	}
}

// ClassifyReportError buckets err for message selection.
func ClassifyReportError(err error) ReportFailure {
	switch errors.CodeOf(err) {
	case errors.ErrUpstreamUnauthorized, errors.ErrNotAuthenticated:
		return ReportUnauthorized
	case errors.ErrUpstreamUnavailable, errors.ErrTransport:
		return ReportUnavailable
	default:
		return ReportFailed
	}
}

// GenerateReport asks the backend for a report on disease for the
// session's patient and returns its URL.
func (c *Client) GenerateReport(ctx context.Context, sess *session.Session, disease string) (*Report, error) {
	disease = strings.TrimSpace(disease)
	if disease == "" {
		return nil, c.fail("report", errors.NewValidation("disease is required", nil))
	}
	patientID, err := requireSession(ctx, sess)
	if err != nil {
		return nil, c.fail("report", err)
	}

	query := url.Values{}
	query.Set("uuid", patientID)
	query.Set("disease", disease)
	req, err := c.newRequest(ctx, http.MethodGet, endpointReport, query, nil, "")
	if err != nil {
		return nil, c.fail("report", err)
	}
	body, err := c.do(req, endpointReport)
	if err != nil {
		return nil, c.fail("report", err)
	}

	var wire reportWire
	if err := c.decode(endpointReport, body, &wire); err != nil {
		return nil, c.fail("report", err)
	}
	link, err := c.resolve(wire.ReportURL)
	if err != nil {
		return nil, c.fail("report", errors.NewMalformed(endpointReport, err))
	}
	return &Report{URL: link}, nil
}
