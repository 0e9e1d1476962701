package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/eyecare-portal/config"
	"github.com/jwalitptl/eyecare-portal/internal/repository/postgres"
	"github.com/jwalitptl/eyecare-portal/internal/service/audit"
	"github.com/jwalitptl/eyecare-portal/internal/worker"
	"github.com/jwalitptl/eyecare-portal/pkg/logger"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
	"github.com/jwalitptl/eyecare-portal/pkg/security"
)

const healthAddr = ":8081"

func setupHealthCheck(db *sqlx.DB, reg *prometheus.Registry, l zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/health/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              healthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("Health check server failed")
		}
	}()
	return srv
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	l := logger.Component(logger.New(&logger.Config{
		Level: logger.ParseLevel(cfg.Log.Level),
		JSON:  cfg.Log.JSON,
	}), "worker")

	if !cfg.Audit.Enabled {
		l.Info().Msg("Audit trail disabled, nothing to clean up")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		l.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	hasher, err := security.NewSubjectHasher([]byte(cfg.Audit.HashKey))
	if err != nil {
		l.Fatal().Err(err).Msg("Invalid audit hash key")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(cfg.Metrics.Namespace+"_worker", reg)

	svc := audit.NewService(postgres.NewAuditRepository(postgres.NewBaseRepository(db)), hasher, l, m)
	cleanup := worker.NewAuditCleanupWorker(svc, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval, l)

	health := setupHealthCheck(db, reg, l)

	if err := cleanup.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("Failed to start audit cleanup")
	}

	<-ctx.Done()
	l.Info().Msg("Shutting down...")
	cleanup.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := health.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Health check server forced to shutdown")
	}
}
