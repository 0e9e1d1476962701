package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/eyecare-portal/internal/middleware"
	"github.com/jwalitptl/eyecare-portal/internal/model"
	"github.com/jwalitptl/eyecare-portal/internal/service/audit"
)

// BaseHandler carries what every portal handler shares.
type BaseHandler struct {
	Audit audit.Recorder
}

func NewBaseHandler(recorder audit.Recorder) BaseHandler {
	if recorder == nil {
		recorder = audit.NewNoopRecorder()
	}
	return BaseHandler{Audit: recorder}
}

// Entry builds an audit entry for the current request. subject is the
// e-mail address involved, if any.
func (h *BaseHandler) Entry(c *gin.Context, action, outcome, subject string) audit.Entry {
	patientID := ""
	if sess := middleware.SessionFrom(c); sess != nil {
		patientID, _ = sess.Read(c.Request.Context())
	}

	return audit.Entry{
		Action:    action,
		Outcome:   outcome,
		Subject:   subject,
		PatientID: patientID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *BaseHandler) Record(c *gin.Context, action, outcome, subject string) {
	h.Audit.Record(c.Request.Context(), h.Entry(c, action, outcome, subject))
}

// Outcome maps an error onto an audit outcome.
func Outcome(err error) string {
	if err != nil {
		return model.AuditOutcomeFailure
	}
	return model.AuditOutcomeSuccess
}
