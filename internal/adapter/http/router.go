package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/postingrules/internal/adapter/http/handler"
	"github.com/iho/postingrules/internal/adapter/http/middleware"
	"github.com/iho/postingrules/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ResolutionHandler *handler.ResolutionHandler
	MappingHandler    *handler.MappingHandler
	HealthHandler     *handler.HealthHandler
	Logger            zerolog.Logger
	// Metrics and Gatherer are optional; /metrics is served only when Gatherer is set.
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Recovery(cfg.Logger))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1/tenants/{tenantID}", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		r.Post("/resolutions", cfg.ResolutionHandler.Resolve)
		r.Post("/resolutions/preview", cfg.ResolutionHandler.Preview)

		r.Route("/mappings", func(r chi.Router) {
			r.Post("/", cfg.MappingHandler.Create)
			r.Get("/", cfg.MappingHandler.List)
			r.Get("/validation", cfg.MappingHandler.Validate)
		})
	})

	return r
}
