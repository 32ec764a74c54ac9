package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/zulal-hq/identity-backend/api/routes"
	"github.com/zulal-hq/identity-backend/internal/logins"
	"github.com/zulal-hq/identity-backend/internal/provisioning"
	"github.com/zulal-hq/identity-backend/internal/tenants"
	"github.com/zulal-hq/identity-backend/internal/users"
	"github.com/zulal-hq/identity-backend/pkg/auth/session"
	"github.com/zulal-hq/identity-backend/pkg/config"
	"github.com/zulal-hq/identity-backend/pkg/db"
	"github.com/zulal-hq/identity-backend/pkg/instance"
	"github.com/zulal-hq/identity-backend/pkg/logger"
	"github.com/zulal-hq/identity-backend/pkg/metrics"
	"github.com/zulal-hq/identity-backend/pkg/migrate"
	"github.com/zulal-hq/identity-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	identityMetrics := metrics.NewIdentityMetrics(prometheus.DefaultRegisterer)

	provisioner, err := provisioning.NewService(provisioning.ServiceParams{
		UserRepo:   users.NewRepository(dbClient.DB()),
		TenantRepo: tenants.NewRepository(dbClient.DB()),
		Admin:      cfg.Admin,
		Metrics:    identityMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create provisioning service", err)
		os.Exit(1)
	}

	recorder, err := logins.NewRecorder(logins.RecorderParams{
		Store:   logins.NewRepository(dbClient.DB()),
		Logger:  logg,
		Metrics: identityMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create login recorder", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		if err := recorder.Run(ctx); err != nil && err != context.Canceled {
			logg.Error(context.Background(), "login recorder stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	logCtx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Provisioner: provisioner,
			Recorder:    recorder,
			RLS:         dbClient,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "server shutdown failed", err)
		}
	}

	// Let the recorder flush its queue before the pool goes away.
	stop()
	<-recorderDone

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(logCtx, "error closing resources", err)
	}
}
