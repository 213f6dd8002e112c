package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/hourdesk/appointments-api/internal/http/middleware"
	"github.com/hourdesk/appointments-api/internal/notifications"
	"github.com/hourdesk/appointments-api/internal/scheduling"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger               *logging.Logger
	SchedulingHandler    *scheduling.Handler
	NotificationsHandler *notifications.Handler
	MetricsHandler       http.Handler
	AuthJWTSecret        string
	RateLimitPerSecond   float64
	RateLimitBurst       int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Session-scoped endpoints.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.UserContext(cfg.AuthJWTSecret))

		authed.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.SchedulingHandler.List)
			r.Post("/", cfg.SchedulingHandler.Create)
			r.Delete("/{id}", cfg.SchedulingHandler.Cancel)
		})

		authed.Route("/providers", func(r chi.Router) {
			r.Get("/", cfg.SchedulingHandler.Providers)
			r.Get("/{providerID}/availability", cfg.SchedulingHandler.Availability)
		})

		if cfg.NotificationsHandler != nil {
			authed.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationsHandler.List)
				r.Patch("/{id}/read", cfg.NotificationsHandler.MarkRead)
			})
		}
	})

	return r
}
