package doctor

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/handler"
	"github.com/jwalitptl/eyecare-portal/internal/model"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

type Finder interface {
	GetDoctorsNearMe(ctx context.Context, loc *client.Coordinates) ([]client.Doctor, error)
}

type Handler struct {
	handler.BaseHandler
	finder Finder
}

func NewHandler(finder Finder, base handler.BaseHandler) *Handler {
	return &Handler{
		BaseHandler: base,
		finder:      finder,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.NearMe)
}

// NearMe lists eye specialists near lat/lng. Without both the configured
// fallback location is used.
func (h *Handler) NearMe(c *gin.Context) {
	loc, err := parseLocation(c.Query("lat"), c.Query("lng"))
	if err != nil {
		httputil.RespondWithError(c, err, "")
		return
	}

	doctors, err := h.finder.GetDoctorsNearMe(c.Request.Context(), loc)
	h.Record(c, model.AuditActionDoctors, handler.Outcome(err), "")
	if err != nil {
		httputil.RespondWithError(c, err, "")
		return
	}
	if doctors == nil {
		doctors = []client.Doctor{}
	}

	httputil.RespondWithSuccess(c, doctors)
}

func parseLocation(lat, lng string) (*client.Coordinates, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errors.NewValidation("Both lat and lng are required", nil)
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, errors.NewValidation("Invalid latitude", err)
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, errors.NewValidation("Invalid longitude", err)
	}
	return &client.Coordinates{Latitude: latitude, Longitude: longitude}, nil
}
