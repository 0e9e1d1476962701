package router

import (
	"fmt"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/handler/page"
	"github.com/jwalitptl/eyecare-portal/internal/middleware"
)

const APIVersion = "1.0"

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups everything the portal mounts.
type Handlers struct {
	// Health and Metrics are served without a browser session.
	Health  Handler
	Metrics Handler
	// Auth and SignUp need a browser session but no patient id.
	Auth   Handler
	SignUp Handler
	// Members require a signed-in browser.
	Members []Handler
	Pages   *page.Handler
}

type RouterConfig struct {
	Mode           string
	TrustedProxies []string
	Gzip           bool
	RateLimit      *middleware.RateLimiterConfig
	CORSConfig     middleware.CORSConfig
	Security       middleware.SecurityConfig
	SizeLimit      middleware.SizeLimitConfig
	MetricsPrefix  string
	Registerer     prometheus.Registerer
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	logger   zerolog.Logger
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, logger zerolog.Logger, config RouterConfig) (*Router, error) {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	metrics, err := initRouterMetrics(config.MetricsPrefix, config.Registerer)
	if err != nil {
		return nil, err
	}

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
	}

	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
	)

	if config.Gzip {
		engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/api/v1/health/`})))
	}
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	engine.Use(middleware.SizeLimit(config.SizeLimit))

	return r, nil
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(middleware.Version(APIVersion))

	r.setupHealthCheck(api)

	browser := api.Group("")
	browser.Use(r.auth.Authenticate())
	r.setupPublicRoutes(browser)

	members := browser.Group("")
	members.Use(r.auth.RequireLogin())
	r.setupProtectedRoutes(members)

	r.setupPages()
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(rg)
	}
	if r.handlers.Metrics != nil {
		r.handlers.Metrics.RegisterRoutes(rg)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	for _, h := range []Handler{r.handlers.Auth, r.handlers.SignUp} {
		if h != nil {
			h.RegisterRoutes(rg)
		}
	}
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	for _, h := range r.handlers.Members {
		h.RegisterRoutes(rg)
	}
}

func (r *Router) setupPages() {
	if r.handlers.Pages == nil {
		return
	}
	pages := r.engine.Group("")
	pages.Use(r.auth.Authenticate())
	r.handlers.Pages.RegisterRoutes(pages)
	r.engine.NoRoute(r.handlers.Pages.NotFound)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) (*routerMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestDuration, m.requestTotal, m.errorTotal} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register router metrics: %w", err)
		}
	}
	return m, nil
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// unmatched paths share one label
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case c.Writer.Status() >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case c.Writer.Status() >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
