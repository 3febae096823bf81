package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource provides functions to retrieve current counts for gauge metrics.
// A nil function means the source is unavailable and its gauge is skipped.
type StatsSource struct {
	EntryCountBySubreddit func() map[string]int
	TrackedSubredditCount func() int
	RateLimitRemaining    func() float64
}

// StartCollector launches a goroutine that periodically updates gauge metrics.
// It runs every interval until the context is cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	// Do an initial collection immediately
	collect(src)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collect(src)
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Metrics collector started")
}

func collect(src StatsSource) {
	if src.EntryCountBySubreddit != nil {
		for subreddit, count := range src.EntryCountBySubreddit() {
			ModLogEntriesStored.WithLabelValues(subreddit).Set(float64(count))
		}
	}
	if src.TrackedSubredditCount != nil {
		TrackedSubredditsTotal.Set(float64(src.TrackedSubredditCount()))
	}
	if src.RateLimitRemaining != nil {
		APIRateLimitRemaining.Set(src.RateLimitRemaining())
	}
}
