package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Platform API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_api_requests_total",
		Help: "Total number of outbound platform API requests",
	}, []string{"type", "method", "path", "status"})

	APIRateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modsentry_api_rate_limit_remaining",
		Help: "Platform API rate-limit budget remaining after the last call",
	})
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modsentry_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Ingestion metrics
var (
	ModLogEntriesIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_modlog_entries_ingested_total",
		Help: "Total number of moderation-log entries ingested",
	}, []string{"subreddit"})

	ModLogPollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modsentry_modlog_poll_errors_total",
		Help: "Total number of mod-log polling errors",
	})
)

// Business metrics (gauges updated periodically by collector)
var (
	ModLogEntriesStored = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "modsentry_modlog_entries_stored",
		Help: "Number of stored moderation-log entries by community",
	}, []string{"subreddit"})

	TrackedSubredditsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modsentry_tracked_subreddits_total",
		Help: "Number of communities the poller is mirroring",
	})
)

// Event counters (incremented on occurrence)
var (
	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_reports_generated_total",
		Help: "Total number of user activity reports generated",
	}, []string{"status"})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) < 2 {
		return path
	}

	if segments[0] == "api" && segments[1] == "subreddits" {
		if len(segments) == 4 && segments[3] == "config" {
			return "/api/subreddits/:name/config"
		}
		if len(segments) == 3 {
			return "/api/subreddits/:name"
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	// Split on /
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
