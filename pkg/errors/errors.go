package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so sentinel values
// such as ErrNotAuthenticated work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// StatusCode maps the error code onto the HTTP status the portal answers with.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotAuthenticated, ErrUpstreamUnauthorized:
		return http.StatusUnauthorized
	case ErrInvalidTransition:
		return http.StatusConflict
	case ErrUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrTransport, ErrUpstreamFailed, ErrMalformedResponse:
		return http.StatusBadGateway
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrNotAuthenticated
	ErrTransport
	ErrUpstreamUnauthorized
	ErrUpstreamUnavailable
	ErrUpstreamFailed
	ErrMalformedResponse
	ErrInvalidTransition
	ErrInternal
)

// Sentinels for errors.Is comparisons.
var (
	NotAuthenticated  = &AppError{Code: ErrNotAuthenticated, Message: "user is not logged in"}
	InvalidTransition = &AppError{Code: ErrInvalidTransition, Message: "action not allowed in the current step"}
	MalformedResponse = &AppError{Code: ErrMalformedResponse, Message: "malformed response from upstream"}
)

func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func NewNotAuthenticated() *AppError {
	return &AppError{
		Code:    ErrNotAuthenticated,
		Message: "user is not logged in",
	}
}

func NewTransport(err error) *AppError {
	return &AppError{
		Code:    ErrTransport,
		Message: "upstream request failed",
		Err:     err,
	}
}

func NewMalformed(endpoint string, err error) *AppError {
	return &AppError{
		Code:    ErrMalformedResponse,
		Message: fmt.Sprintf("malformed response from %s", endpoint),
		Err:     err,
	}
}

func NewInvalidTransition(action, step string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("%s is not allowed in step %s", action, step),
	}
}

// NewUpstreamStatus classifies a non-2xx upstream status. message is the
// server supplied error text, if any.
func NewUpstreamStatus(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}
	code := ErrUpstreamFailed
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = ErrUpstreamUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		code = ErrUpstreamUnavailable
	}
	return &AppError{
		Code:    code,
		Message: message,
		Err:     fmt.Errorf("upstream status %d", status),
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
