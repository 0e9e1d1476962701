package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

const (
	HeaderAcceptVersion = "Accept-Version"
	HeaderAPIVersion    = "X-API-Version"
)

var versionRegex = regexp.MustCompile(`^(\d+)(?:\.(\d+))?$`)

// Version announces the API version and rejects requests asking for a
// different major version. Requests without Accept-Version are served.
func Version(current string) gin.HandlerFunc {
	currentMajor := majorOf(current)

	return func(c *gin.Context) {
		c.Header(HeaderAPIVersion, current)

		requested := c.GetHeader(HeaderAcceptVersion)
		if requested == "" {
			c.Next()
			return
		}

		if !versionRegex.MatchString(requested) {
			httputil.RespondWithFailure(c, http.StatusBadRequest, "Invalid version format. Use: major.minor", nil)
			c.Abort()
			return
		}
		if majorOf(requested) != currentMajor {
			httputil.RespondWithFailure(c, http.StatusNotAcceptable, fmt.Sprintf("API version %s not supported", requested), nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func majorOf(version string) string {
	m := versionRegex.FindStringSubmatch(version)
	if m == nil {
		return ""
	}
	return m[1]
}
