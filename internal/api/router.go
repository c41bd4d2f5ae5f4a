package api

import (
	"delivery-route-optimizer/internal/api/handlers"
	"delivery-route-optimizer/internal/platform/obs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Optimizer handlers.RouteOptimizer
	Logger    zerolog.Logger
	// Breaker-guarded upstreams reported by /health.
	Upstreams []handlers.Upstream
	// Optimize requests allowed per client IP per minute. Zero disables the limit.
	RateLimitPerMinute int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(requestContext(cfg.Logger), accessLog, recoverer)

	routes := &handlers.RouteHandler{Optimizer: cfg.Optimizer}
	health := &handlers.HealthHandler{Upstreams: cfg.Upstreams}

	r.Get("/health", health.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(
				cfg.RateLimitPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByRealIP),
				httprate.WithLimitHandler(handlers.RateLimited),
			))
		}
		r.Post("/v1/routes:optimize", routes.Optimize)
	})

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	return r
}
