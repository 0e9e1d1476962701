package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

const (
	ContextBrowserID = "browser_id"
	ContextSession   = "session"
)

type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// AuthMiddleware resolves the browser cookie into the server-side session
// holding the patient identifier.
type AuthMiddleware struct {
	tokens   *session.BrowserTokens
	sessions *session.Provider
	cookie   CookieConfig
	logger   zerolog.Logger
}

func NewAuthMiddleware(tokens *session.BrowserTokens, sessions *session.Provider, cookie CookieConfig, logger zerolog.Logger) *AuthMiddleware {
	if cookie.Name == "" {
		cookie.Name = "eyecare_session"
	}
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

// Authenticate attaches the browser's session to the context, issuing a
// new browser cookie when none or an invalid one was sent.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		browserID := ""
		if raw, err := c.Cookie(m.cookie.Name); err == nil && raw != "" {
			id, err := m.tokens.Parse(raw)
			if err != nil {
				m.logger.Debug().Err(err).Str("request_id", GetRequestID(c)).Msg("Discarding browser cookie")
			} else {
				browserID = id
			}
		}

		if browserID == "" {
			id, token, err := m.tokens.Issue()
			if err != nil {
				httputil.RespondWithError(c, errors.NewInternal(err), "")
				c.Abort()
				return
			}
			browserID = id
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.cookie.Name, token, int(m.cookie.MaxAge.Seconds()), "/", "", m.cookie.Secure, true)
		}

		c.Set(ContextBrowserID, browserID)
		c.Set(ContextSession, m.sessions.ForBrowser(browserID))
		c.Next()
	}
}

// RequireLogin rejects API requests from browsers without a patient id.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || !sess.IsLoggedIn(c.Request.Context()) {
			httputil.RespondWithError(c, errors.NewNotAuthenticated(), "Please sign in to continue")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session attached by Authenticate, or nil.
func SessionFrom(c *gin.Context) *session.Session {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

func BrowserIDFrom(c *gin.Context) string {
	return c.GetString(ContextBrowserID)
}
