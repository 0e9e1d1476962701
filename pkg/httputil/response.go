package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/eyecare-portal/pkg/errors"
)

// Response wraps all API responses. Message is the notification the view
// shows; Redirect, when set, is the page the view navigates to.
type Response struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Error    *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithNotice sends a success response carrying a message and an
// optional redirect target.
func RespondWithNotice(c *gin.Context, message, redirect string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:  true,
		Message:  message,
		Redirect: redirect,
		Data:     data,
	})
}

// RespondWithFailure sends a failure the upstream reported through response
// flags rather than an HTTP status.
func RespondWithFailure(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Data:    data,
		Error: &Error{
			Code:    status,
			Message: message,
		},
	})
}

// RespondWithError sends an error response. message overrides the error's
// own text when non-empty.
func RespondWithError(c *gin.Context, err error, message string) {
	statusCode := http.StatusInternalServerError
	text := "Internal server error"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		text = appErr.Message
	}
	if message != "" {
		text = message
	}

	_ = c.Error(err)
	c.JSON(statusCode, Response{
		Success: false,
		Message: text,
		Error: &Error{
			Code:    statusCode,
			Message: text,
		},
	})
}
