// Package http exposes the resolver over a chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/internal/interfaces/http/handlers"
	"github.com/turtacn/chemidr/internal/interfaces/http/middleware"
)

// RouterConfig aggregates handler and middleware dependencies. Nil handlers
// leave their routes unmounted.
type RouterConfig struct {
	ResolveHandler *handlers.ResolveHandler
	JobHandler     *handlers.JobHandler
	HealthHandler  *handlers.HealthHandler

	RateLimiter    *middleware.RateLimiter
	HTTPMetrics    middleware.HTTPMetrics
	MetricsHandler http.Handler

	Logger logging.Logger
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.RequestMetrics(cfg.HTTPMetrics))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Handler)
		}
		registerResolveRoutes(api, cfg.ResolveHandler)
		if cfg.JobHandler != nil {
			api.Post("/jobs", cfg.JobHandler.Submit)
		}
	})

	return r
}

func registerResolveRoutes(r chi.Router, h *handlers.ResolveHandler) {
	if h == nil {
		return
	}
	r.Post("/resolve", h.Resolve)
	r.Post("/inchikeys", h.InChIKeys)
	r.Get("/mesh/{meshID}", h.MeSH)
	r.Get("/results", h.FindStored)
	r.Get("/runs/{runID}", h.ListRun)
}

//Personal.AI order the ending
