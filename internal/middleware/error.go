package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

// ErrorHandler answers requests whose handler attached an error without
// writing a response.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		logger.Error().
			Err(lastErr.Err).
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Unhandled request error")

		httputil.RespondWithError(c, lastErr.Err, "")
	}
}
