package patient

import (
	"context"
	stderrors "errors"
	"mime/multipart"
	"net/http"

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

// UploadField is the multipart field carrying the retinal image.
const UploadField = "file"

// Service is the patient-facing part of the backend client.
type Service interface {
	PredictDisease(ctx context.Context, sess *session.Session, img client.Image) (*client.Prediction, error)
	GetPatientHistory(ctx context.Context, sess *session.Session) ([]client.HistoryItem, error)
	GenerateReport(ctx context.Context, sess *session.Session, disease string) (*client.Report, error)
}

type Handler struct {
	handler.BaseHandler
	svc    Service
	logger zerolog.Logger
}

func NewHandler(svc Service, base handler.BaseHandler, logger zerolog.Logger) *Handler {
	return &Handler{
		BaseHandler: base,
		svc:         svc,
		logger:      logger,
	}
}

// RegisterRoutes mounts the patient endpoints on a group that already
// requires a signed-in browser.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/predictions", h.Predict)
	r.GET("/predictions/history", h.History)
	r.GET("/reports", h.Report)
}

func (h *Handler) Predict(c *gin.Context) {
	var img client.Image

	fh, err := c.FormFile(UploadField)
	switch {
	case err == nil:
		file, err := fh.Open()
		if err != nil {
			httputil.RespondWithError(c, errors.NewValidation("Unable to read the uploaded image", err), "")
			return
		}
		defer closeFile(file)
		img = client.Image{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        file,
		}
	case stderrors.Is(err, http.ErrMissingFile), stderrors.Is(err, http.ErrNotMultipart):
		// the client rejects an empty image with the user-facing message
	default:
		httputil.RespondWithError(c, errors.NewValidation("Invalid upload", err), "")
		return
	}

	prediction, err := h.svc.PredictDisease(c.Request.Context(), middleware.SessionFrom(c), img)
	h.Record(c, model.AuditActionPredict, handler.Outcome(err), "")
	if err != nil {
		httputil.RespondWithError(c, err, "")
		return
	}

	httputil.RespondWithSuccess(c, prediction)
}

func (h *Handler) History(c *gin.Context) {
	items, err := h.svc.GetPatientHistory(c.Request.Context(), middleware.SessionFrom(c))
	h.Record(c, model.AuditActionHistory, handler.Outcome(err), "")
	if err != nil {
		httputil.RespondWithError(c, err, "")
		return
	}
	if items == nil {
		items = []client.HistoryItem{}
	}

	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) Report(c *gin.Context) {
	report, err := h.svc.GenerateReport(c.Request.Context(), middleware.SessionFrom(c), c.Query("disease"))
	h.Record(c, model.AuditActionReport, handler.Outcome(err), "")
	if err != nil {
		if errors.CodeOf(err) == errors.ErrValidation {
			httputil.RespondWithError(c, err, "")
			return
		}
		kind := client.ClassifyReportError(err)
		h.logger.Warn().Err(err).Str("failure", string(kind)).Msg("report generation failed")
		httputil.RespondWithError(c, err, kind.Message())
		return
	}

	httputil.RespondWithSuccess(c, report)
}

func closeFile(f multipart.File) {
	_ = f.Close()
}
