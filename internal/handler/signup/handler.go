package signup

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/handler"
	"github.com/jwalitptl/eyecare-portal/internal/middleware"
	"github.com/jwalitptl/eyecare-portal/internal/model"
	"github.com/jwalitptl/eyecare-portal/internal/wizard"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OTPRequest struct {
	OTP string `json:"otp"`
}

// StepResponse describes the wizard step the view should render.
type StepResponse struct {
	Step     wizard.Step `json:"step"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Email    string      `json:"email,omitempty"`
}

type Handler struct {
	handler.BaseHandler
	auth    wizard.Authenticator
	store   *wizard.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewHandler(auth wizard.Authenticator, store *wizard.Store, base handler.BaseHandler, logger zerolog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		BaseHandler: base,
		auth:        auth,
		store:       store,
		logger:      logger,
		metrics:     m,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	signup := r.Group("/signup")
	{
		signup.GET("", h.Current)
		signup.POST("/credentials", h.Credentials)
		signup.POST("/otp", h.VerifyOTP)
		signup.POST("/back", h.Back)
		signup.POST("/register", h.Register)
	}
}

// flow restores the browser's wizard. The returned save func writes the
// state back and must be called once the action ran.
func (h *Handler) flow(c *gin.Context) (*wizard.Flow, func()) {
	browserID := middleware.BrowserIDFrom(c)
	f := wizard.NewFlow(h.auth, middleware.SessionFrom(c), h.store.Load(browserID), h.logger, h.metrics)
	return f, func() { h.store.Save(browserID, f.State()) }
}

func view(st wizard.State) StepResponse {
	return StepResponse{
		Step:     st.Step,
		Title:    st.Step.Title(),
		Subtitle: st.Step.Subtitle(),
		Email:    st.Email,
	}
}

// redirectIfLoggedIn answers with the redirect when the browser already
// holds a patient id.
func (h *Handler) redirectIfLoggedIn(c *gin.Context, f *wizard.Flow) bool {
	if target := f.Begin(c.Request.Context()); target != "" {
		h.store.Reset(middleware.BrowserIDFrom(c))
		httputil.RespondWithNotice(c, "", target, nil)
		return true
	}
	return false
}

func (h *Handler) Current(c *gin.Context) {
	f, _ := h.flow(c)
	if h.redirectIfLoggedIn(c, f) {
		return
	}
	httputil.RespondWithSuccess(c, view(f.State()))
}

func (h *Handler) Credentials(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation("Invalid request body", err), "")
		return
	}

	f, save := h.flow(c)
	if h.redirectIfLoggedIn(c, f) {
		return
	}

	result, err := f.SubmitCredentials(c.Request.Context(), req.Email, req.Password)
	save()
	if err != nil {
		h.Record(c, model.AuditActionSignUpCredentials, model.AuditOutcomeFailure, req.Email)
		httputil.RespondWithError(c, err, "")
		return
	}

	if !result.OTPSent {
		h.Record(c, model.AuditActionSignUpCredentials, model.AuditOutcomeDenied, req.Email)
		httputil.RespondWithFailure(c, http.StatusBadRequest, firstNonEmpty(result.Error, result.Message, "Failed to send OTP. Please try again."), view(f.State()))
		return
	}

	h.Record(c, model.AuditActionSignUpCredentials, model.AuditOutcomeSuccess, req.Email)
	httputil.RespondWithNotice(c, firstNonEmpty(result.Message, "OTP sent to your email"), "", view(f.State()))
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation("Invalid request body", err), "")
		return
	}

	f, save := h.flow(c)
	email := f.State().Email
	result, err := f.VerifyOTP(c.Request.Context(), req.OTP)
	save()
	if err != nil {
		h.Record(c, model.AuditActionSignUpOTP, model.AuditOutcomeFailure, email)
		httputil.RespondWithError(c, err, "")
		return
	}

	if !result.Authenticated {
		h.Record(c, model.AuditActionSignUpOTP, model.AuditOutcomeDenied, email)
		httputil.RespondWithFailure(c, http.StatusUnauthorized, firstNonEmpty(result.Error, result.Message, "Invalid OTP. Please try again."), view(f.State()))
		return
	}

	h.Record(c, model.AuditActionSignUpOTP, model.AuditOutcomeSuccess, email)
	httputil.RespondWithNotice(c, firstNonEmpty(result.Message, "Email verified successfully"), "", view(f.State()))
}

func (h *Handler) Back(c *gin.Context) {
	f, save := h.flow(c)
	err := f.Back()
	save()
	h.Record(c, model.AuditActionSignUpBack, handler.Outcome(err), "")
	if err != nil {
		httputil.RespondWithError(c, err, "")
		return
	}
	httputil.RespondWithSuccess(c, view(f.State()))
}

func (h *Handler) Register(c *gin.Context) {
	var profile wizard.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		httputil.RespondWithError(c, errors.NewValidation("Invalid request body", err), "")
		return
	}

	f, save := h.flow(c)
	email := f.State().Email
	result, err := f.Register(c.Request.Context(), profile)
	save()
	if err != nil {
		h.Record(c, model.AuditActionSignUpRegister, model.AuditOutcomeFailure, email)
		httputil.RespondWithError(c, err, "")
		return
	}

	h.Record(c, model.AuditActionSignUpRegister, model.AuditOutcomeSuccess, email)
	httputil.RespondWithNotice(c, firstNonEmpty(result.Message, "Registration successful"), wizard.RedirectLoggedIn, nil)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
