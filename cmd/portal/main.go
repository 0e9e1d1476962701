package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/eyecare-portal/config"
	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/handler"
	"github.com/jwalitptl/eyecare-portal/internal/handler/auth"
	"github.com/jwalitptl/eyecare-portal/internal/handler/doctor"
	"github.com/jwalitptl/eyecare-portal/internal/handler/health"
	"github.com/jwalitptl/eyecare-portal/internal/handler/page"
	"github.com/jwalitptl/eyecare-portal/internal/handler/patient"
	promhandler "github.com/jwalitptl/eyecare-portal/internal/handler/prometheus"
	"github.com/jwalitptl/eyecare-portal/internal/handler/signup"
	"github.com/jwalitptl/eyecare-portal/internal/middleware"
	"github.com/jwalitptl/eyecare-portal/internal/repository/postgres"
	"github.com/jwalitptl/eyecare-portal/internal/router"
	"github.com/jwalitptl/eyecare-portal/internal/service/audit"
	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/internal/wizard"
	"github.com/jwalitptl/eyecare-portal/pkg/logger"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
	"github.com/jwalitptl/eyecare-portal/pkg/security"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(&logger.Config{
		Level: logger.ParseLevel(cfg.Log.Level),
		JSON:  cfg.Log.JSON,
	})

	if err := run(cfg, l); err != nil {
		l.Fatal().Err(err).Msg("portal stopped")
	}
	l.Info().Msg("server exited properly")
}

func run(cfg *config.Config, l zerolog.Logger) error {
	var err error
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Namespace, reg)

	checks := map[string]health.Pinger{}

	// Sessions
	var backend session.Backend = session.NewMemoryBackend()
	if cfg.Session.Backend == "redis" {
		rb, err := session.NewRedisBackend(ctx, session.RedisConfig{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return err
		}
		defer rb.Close()
		backend = rb
		checks["redis"] = rb
	}
	provider := session.NewProvider(backend, logger.Component(l, "session"), m)

	secret := cfg.Session.CookieSecret
	if secret == "" {
		l.Warn().Msg("session.cookie_secret not set, browser sessions will not survive a restart")
		if secret, err = randomSecret(); err != nil {
			return err
		}
	}
	tokens, err := session.NewBrowserTokens(secret)
	if err != nil {
		return err
	}

	// Backend client
	upstream, err := client.New(client.Config{
		BaseURL: cfg.Upstream.BaseURL,
		FallbackLocation: client.Coordinates{
			Latitude:  cfg.Upstream.DefaultLatitude,
			Longitude: cfg.Upstream.DefaultLongitude,
		},
		BackfillConfidence: cfg.Upstream.BackfillConfidence,
	},
		client.WithLogger(logger.Component(l, "client")),
		client.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	// Audit trail
	var recorder audit.Recorder = audit.NewNoopRecorder()
	if cfg.Audit.Enabled {
		db, err := postgres.NewDB(ctx, postgres.DatabaseConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Name:            cfg.Database.Name,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		checks["database"] = health.PingFunc(db.PingContext)

		hasher, err := security.NewSubjectHasher([]byte(cfg.Audit.HashKey))
		if err != nil {
			return err
		}
		repo := postgres.NewAuditRepository(postgres.NewBaseRepository(db))
		auditLogger := audit.NewAuditLogger(
			audit.NewService(repo, hasher, logger.Component(l, "audit"), m),
			logger.Component(l, "audit"),
			cfg.Audit.WriteTimeout,
		)
		defer auditLogger.Wait()
		recorder = auditLogger
	}

	// HTTP surface
	pages, err := page.NewHandler(cfg.Web.IndexFile)
	if err != nil {
		return err
	}
	base := handler.NewBaseHandler(recorder)
	authMW := middleware.NewAuthMiddleware(tokens, provider, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.CookieMaxAge,
		Secure: cfg.Session.CookieSecure,
	}, logger.Component(l, "auth"))

	var rateLimit *middleware.RateLimiterConfig
	if cfg.RateLimit.Enabled {
		rateLimit = &middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		}
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins
	cors.AllowMethods = cfg.CORS.AllowedMethods
	cors.AllowHeaders = cfg.CORS.AllowedHeaders
	sizeLimit := middleware.DefaultSizeLimitConfig()
	sizeLimit.MaxUploadSize = cfg.Upload.MaxSize
	sizeLimit.MaxHeaderSize = cfg.Server.MaxHeaderBytes

	httpLogger := logger.Component(l, "http")
	r, err := router.NewRouter(authMW, router.Handlers{
		Health:  health.NewHandler(checks),
		Metrics: promhandler.New(reg),
		Auth:    auth.NewHandler(upstream, base, httpLogger),
		SignUp:  signup.NewHandler(upstream, wizard.NewStore(cfg.Wizard.TTL), base, logger.Component(l, "wizard"), m),
		Members: []router.Handler{
			patient.NewHandler(upstream, base, httpLogger),
			doctor.NewHandler(upstream, base),
		},
		Pages: pages,
	}, httpLogger, router.RouterConfig{
		Mode:           cfg.Server.Mode,
		TrustedProxies: cfg.Server.TrustedProxies,
		Gzip:           cfg.Server.Gzip,
		RateLimit:      rateLimit,
		CORSConfig:     cors,
		Security:       middleware.DefaultSecurityConfig(cfg.Session.CookieSecure),
		SizeLimit:      sizeLimit,
		MetricsPrefix:  cfg.Metrics.Namespace + "_http",
		Registerer:     reg,
	})
	if err != nil {
		return err
	}
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("addr", srv.Addr).Str("upstream", cfg.Upstream.BaseURL).Msg("starting portal")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate cookie secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
