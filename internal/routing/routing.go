// Package routing wires the HTTP surface together.
package routing

import (
	"net/http"

	"modsentry/internal/handlers"
	"modsentry/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Logger   zerolog.Logger
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Report and configuration API (JSON, read-only)
	mux.HandleFunc("GET /api/reports/user", h.HandleUserReport)
	mux.HandleFunc("GET /api/subreddits/{name}/config", h.HandleSubredditConfig)

	// Operational endpoints
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Limit request body size (innermost - runs first on request)
	handler = middleware.LimitBodyMiddleware(handler)

	// 2. Apply rate limiting
	rateLimitConfig := middleware.NewDefaultRateLimitConfig()
	handler = middleware.RateLimitMiddleware(rateLimitConfig)(handler)

	// 3. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 4. Apply logging middleware
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	// 5. Trace inbound requests (outermost - wraps everything)
	handler = otelhttp.NewHandler(handler, "modsentry.http")

	return handler
}
