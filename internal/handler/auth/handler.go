package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/handler"
	"github.com/jwalitptl/eyecare-portal/internal/middleware"
	"github.com/jwalitptl/eyecare-portal/internal/model"
	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

const (
	RedirectSignedIn  = "/prediction"
	RedirectSignedOut = "/signin"
)

// Authenticator is the part of the backend client sign-in needs.
type Authenticator interface {
	SignIn(ctx context.Context, sess *session.Session, email, password string) (*client.LoginResult, error)
	Logout(ctx context.Context, sess *session.Session) error
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Handler struct {
	handler.BaseHandler
	auth   Authenticator
	logger zerolog.Logger
}

func NewHandler(auth Authenticator, base handler.BaseHandler, logger zerolog.Logger) *Handler {
	return &Handler{
		BaseHandler: base,
		auth:        auth,
		logger:      logger,
	}
}

// RegisterRoutes mounts the auth endpoints. Sign-in and logout must be
// reachable without a patient id.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/signin", h.SignIn)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", h.Session)
	}
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation("Invalid request body", err), "")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httputil.RespondWithError(c, errors.NewValidation("Please enter both email and password", nil), "")
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), middleware.SessionFrom(c), req.Email, req.Password)
	if err != nil {
		h.Record(c, model.AuditActionSignIn, model.AuditOutcomeFailure, req.Email)
		httputil.RespondWithError(c, err, signInErrorMessage(err))
		return
	}

	outcome := result.Outcome()
	if outcome == client.LoginSucceeded {
		h.Record(c, model.AuditActionSignIn, model.AuditOutcomeSuccess, req.Email)
		httputil.RespondWithNotice(c, outcome.Message(), RedirectSignedIn, nil)
		return
	}

	h.Record(c, model.AuditActionSignIn, model.AuditOutcomeDenied, req.Email)
	h.logger.Info().
		Str("outcome", outcome.String()).
		Str("request_id", middleware.GetRequestID(c)).
		Msg("sign-in refused")

	status := http.StatusForbidden
	switch outcome {
	case client.LoginUnknownUser:
		status = http.StatusNotFound
	case client.LoginWrongPassword:
		status = http.StatusUnauthorized
	}
	httputil.RespondWithFailure(c, status, outcome.Message(), nil)
}

// signInErrorMessage keeps the server's own text for upstream failures and
// falls back to a generic message otherwise.
func signInErrorMessage(err error) string {
	switch errors.CodeOf(err) {
	case errors.ErrUpstreamFailed, errors.ErrUpstreamUnauthorized, errors.ErrUpstreamUnavailable:
		return ""
	default:
		return "An error occurred during sign in."
	}
}

func (h *Handler) Logout(c *gin.Context) {
	entry := h.Entry(c, model.AuditActionLogout, "", "")

	err := h.auth.Logout(c.Request.Context(), middleware.SessionFrom(c))
	entry.Outcome = handler.Outcome(err)
	h.Audit.Record(c.Request.Context(), entry)
	if err != nil {
		httputil.RespondWithError(c, err, "Logout failed. Please try again.")
		return
	}

	httputil.RespondWithNotice(c, "Logged out successfully", RedirectSignedOut, nil)
}

type SessionResponse struct {
	LoggedIn bool `json:"logged_in"`
}

func (h *Handler) Session(c *gin.Context) {
	loggedIn := false
	if sess := middleware.SessionFrom(c); sess != nil {
		loggedIn = sess.IsLoggedIn(c.Request.Context())
	}
	httputil.RespondWithSuccess(c, SessionResponse{LoggedIn: loggedIn})
}
