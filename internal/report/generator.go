// Package report builds time-windowed user activity reports from the
// persisted moderation log.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"modsentry/internal/metrics"
	"modsentry/internal/modlog"
	"modsentry/internal/period"

	"github.com/rs/zerolog/log"
)

// ParseUsername strips an optional leading "u/" or "/u/" prefix from a
// human-entered username. The prefix match is case-sensitive and the
// remainder is preserved as typed.
func ParseUsername(input string) string {
	if rest, ok := strings.CutPrefix(input, "/u/"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(input, "u/"); ok {
		return rest
	}
	return input
}

// Input identifies one report request. All fields are required.
type Input struct {
	Username  string
	Subreddit string
	Period    string
}

// Report is the generated user activity report. The two sequences are
// disjoint, preserve stored order, and together hold every log entry that
// matched the user and time window.
type Report struct {
	RemovedComments    []modlog.Entry `json:"removedComments"`
	RemovedSubmissions []modlog.Entry `json:"removedSubmissions"`
	ParsedPeriod       string         `json:"parsedPeriod"`
}

// Generator produces user activity reports from the persisted log store.
type Generator struct {
	logs modlog.Store
	now  func() time.Time
}

// NewGenerator creates a generator reading from the given store.
func NewGenerator(logs modlog.Store) *Generator {
	return &Generator{
		logs: logs,
		now:  time.Now,
	}
}

// WithClock overrides the reference clock. Intended for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the activity report for one user in one community over a
// relative period. An unparseable period surfaces period.ErrInvalidPeriod;
// it is never silently widened. Store failures propagate to the caller.
func (g *Generator) Generate(ctx context.Context, input Input) (*Report, error) {
	username := ParseUsername(input.Username)

	p, err := period.Parse(input.Period, g.now())
	if err != nil {
		metrics.ReportsGeneratedTotal.WithLabelValues("invalid_period").Inc()
		return nil, err
	}
	cutoff := p.CutoffMillis()

	entries, err := g.logs.GetEntries(ctx, input.Subreddit)
	if err != nil {
		metrics.ReportsGeneratedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read mod log for %s: %w", input.Subreddit, err)
	}

	result := &Report{
		RemovedComments:    []modlog.Entry{},
		RemovedSubmissions: []modlog.Entry{},
		ParsedPeriod:       p.String(),
	}

	for _, entry := range entries {
		if entry.Author != username || entry.Timestamp < cutoff {
			continue
		}
		switch entry.Kind {
		case modlog.KindComment:
			result.RemovedComments = append(result.RemovedComments, entry)
		case modlog.KindSubmission:
			result.RemovedSubmissions = append(result.RemovedSubmissions, entry)
		}
	}

	metrics.ReportsGeneratedTotal.WithLabelValues("ok").Inc()

	log.Debug().
		Str("username", username).
		Str("subreddit", input.Subreddit).
		Str("period", result.ParsedPeriod).
		Int("comments", len(result.RemovedComments)).
		Int("submissions", len(result.RemovedSubmissions)).
		Msg("report: generated")

	return result, nil
}
