package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zulal-hq/identity-backend/api/controllers"
	"github.com/zulal-hq/identity-backend/api/middleware"
	"github.com/zulal-hq/identity-backend/internal/logins"
	"github.com/zulal-hq/identity-backend/internal/provisioning"
	"github.com/zulal-hq/identity-backend/pkg/auth/session"
	"github.com/zulal-hq/identity-backend/pkg/config"
	"github.com/zulal-hq/identity-backend/pkg/logger"
)

type sessionManager interface {
	session.Checker
	Register(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type sessionContextSetter interface {
	SetSessionContext(ctx context.Context, tenantID, userID uuid.UUID) error
}

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          pinger
	Redis       pinger
	Sessions    sessionManager
	Provisioner provisioning.Service
	Recorder    *logins.Recorder
	RLS         sessionContextSetter
	Metrics     http.Handler
}

// NewRouter assembles the middleware chain and routes.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.Gate(p.Config.JWT, p.Config.Gate),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})

	metricsHandler := p.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/callback", controllers.AuthCallback(controllers.CallbackParams{
				Provisioner: p.Provisioner,
				Sessions:    p.Sessions,
				Recorder:    p.Recorder,
				RLS:         p.RLS,
				JWT:         p.Config.JWT,
				Admin:       p.Config.Admin,
				Logger:      p.Logger,
			}))
			r.Post("/logout", controllers.AuthLogout(p.Sessions, p.Config.JWT, p.Logger))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(p.Config.JWT, p.Sessions, p.Logger))
				r.Post("/track-login", controllers.AuthTrackLogin(p.Recorder, p.Logger))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(p.Config.JWT, p.Sessions, p.Logger))
			r.Get("/session", controllers.Session(p.Logger))
			r.Get("/user/tenant-info", controllers.UserTenantInfo(p.Provisioner, p.Logger))
		})
	})

	return r
}
