// Package handlers exposes the service's HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"modsentry/internal/modlog"
	"modsentry/internal/period"
	"modsentry/internal/report"
	"modsentry/internal/subconfig"

	"github.com/rs/zerolog/log"
)

// healthCheckTimeout bounds the store probe on /healthz.
const healthCheckTimeout = 2 * time.Second

// ConfigResolver resolves the effective configuration for a community.
// Both subconfig.Resolver and subconfig.CachedResolver satisfy it.
type ConfigResolver interface {
	Resolve(ctx context.Context, subreddit string) (subconfig.Config, error)
}

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	reports *report.Generator
	configs ConfigResolver
	logs    modlog.Store
}

// NewHandler creates a new Handler with all required dependencies.
func NewHandler(reports *report.Generator, configs ConfigResolver, logs modlog.Store) *Handler {
	return &Handler{
		reports: reports,
		configs: configs,
		logs:    logs,
	}
}

// writeJSON encodes and writes a JSON response
func writeJSON(w http.ResponseWriter, v interface{}, entityName string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode " + entityName + " response")
	}
}

// errorResponse is the uniform JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
	}
}

// HandleUserReport handles GET /api/reports/user.
// Query parameters: username, subreddit, period (all required).
func (h *Handler) HandleUserReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := report.Input{
		Username:  q.Get("username"),
		Subreddit: q.Get("subreddit"),
		Period:    q.Get("period"),
	}

	if input.Username == "" || input.Subreddit == "" || input.Period == "" {
		writeError(w, http.StatusBadRequest, "username, subreddit and period are required")
		return
	}

	rep, err := h.reports.Generate(r.Context(), input)
	if err != nil {
		if errors.Is(err, period.ErrInvalidPeriod) {
			writeError(w, http.StatusBadRequest, "invalid period: "+input.Period)
			return
		}
		log.Error().Err(err).
			Str("subreddit", input.Subreddit).
			Msg("handlers: failed to generate report")
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	writeJSON(w, rep, "report")
}

// HandleSubredditConfig handles GET /api/subreddits/{name}/config.
// It returns the effective configuration for the named community.
func (h *Handler) HandleSubredditConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "subreddit name is required")
		return
	}

	cfg, err := h.configs.Resolve(r.Context(), name)
	if err != nil {
		log.Error().Err(err).
			Str("subreddit", name).
			Msg("handlers: failed to resolve config")
		writeError(w, http.StatusInternalServerError, "failed to resolve config")
		return
	}

	writeJSON(w, cfg, "config")
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz. It verifies the log store is reachable.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if _, err := h.logs.GetEntries(ctx, "healthz"); err != nil {
		log.Error().Err(err).Msg("handlers: health check store probe failed")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	writeJSON(w, healthResponse{Status: "ok"}, "health")
}
