package page

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/eyecare-portal/internal/middleware"
	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

const (
	PathPrediction = "/prediction"
	PathSignIn     = "/signin"
)

type access int

const (
	public access = iota
	guestOnly
	membersOnly
)

type route struct {
	path   string
	name   string
	access access
}

var routes = []route{
	{"/", "index", public},
	{"/home", "home", public},
	{"/signup", "signup", guestOnly},
	{"/signin", "signin", guestOnly},
	{"/login", "signin", guestOnly},
	{"/prediction", "prediction", membersOnly},
	{"/history", "history", membersOnly},
	{"/doctors", "doctors", membersOnly},
}

// PageResponse is served when no index file is configured.
type PageResponse struct {
	Page string `json:"page"`
}

// Handler serves the single-page application's routes with login gating.
type Handler struct {
	index []byte
}

// NewHandler loads indexFile, the SPA entry point. An empty path serves a
// JSON page descriptor instead.
func NewHandler(indexFile string) (*Handler, error) {
	h := &Handler{}
	if indexFile == "" {
		return h, nil
	}

	index, err := os.ReadFile(indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	h.index = index
	return h, nil
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	for _, rt := range routes {
		r.GET(rt.path, h.serve(rt))
	}
}

func (h *Handler) serve(rt route) gin.HandlerFunc {
	return func(c *gin.Context) {
		loggedIn := false
		if sess := middleware.SessionFrom(c); sess != nil {
			loggedIn = sess.IsLoggedIn(c.Request.Context())
		}

		switch {
		case rt.access == guestOnly && loggedIn:
			c.Redirect(http.StatusFound, PathPrediction)
			return
		case rt.access == membersOnly && !loggedIn:
			c.Redirect(http.StatusFound, PathSignIn)
			return
		}
		h.render(c, http.StatusOK, rt.name)
	}
}

// NotFound answers unknown paths. API paths get the JSON envelope.
func (h *Handler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		httputil.RespondWithFailure(c, http.StatusNotFound, "Resource not found", nil)
		return
	}
	h.render(c, http.StatusNotFound, "not_found")
}

func (h *Handler) render(c *gin.Context, status int, name string) {
	if h.index != nil {
		c.Data(status, "text/html; charset=utf-8", h.index)
		return
	}
	c.JSON(status, PageResponse{Page: name})
}
