// Package ingest mirrors per-community moderation logs into local storage
// by polling the platform API.
package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"modsentry/internal/metrics"
	"modsentry/internal/modlog"
	"modsentry/internal/reddit"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Source lists moderated communities and fetches their moderation logs.
// The reddit API layer satisfies it.
type Source interface {
	ListModeratedSubreddits(ctx context.Context) ([]string, error)
	FetchModLog(ctx context.Context, subreddit string, params reddit.ModLogParams) ([]modlog.Entry, error)
}

// Config configures the poller.
type Config struct {
	// Interval between polls. Defaults to 5 minutes.
	Interval time.Duration

	// PageSize is the listing size per fetch. Defaults to 100.
	PageSize int

	// Concurrency bounds the number of communities fetched at once.
	// Defaults to 4.
	Concurrency int

	// ExtraSubreddits are polled in addition to the moderated list,
	// e.g. communities seeded from a watch file before the bot's
	// moderator invite lands.
	ExtraSubreddits []string
}

// Poller periodically fetches each moderated community's mod log and
// stores new entries. Fetch failures degrade to a logged error and a
// metric; the loop keeps running.
type Poller struct {
	source Source
	store  modlog.Store
	config Config

	mu       sync.Mutex
	lastSeen map[string]int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPoller creates a poller over the given source and store.
func NewPoller(source Source, store modlog.Store, config Config) *Poller {
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}
	if config.PageSize == 0 {
		config.PageSize = 100
	}
	if config.Concurrency == 0 {
		config.Concurrency = 4
	}

	return &Poller{
		source:   source,
		store:    store,
		config:   config,
		lastSeen: make(map[string]int64),
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()

	log.Info().Dur("interval", p.config.Interval).Msg("ingest: poller started")
}

// Stop gracefully stops the poller.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	// Poll once immediately so a fresh process has data to report on.
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce fetches every moderated community's log and stores new entries.
func (p *Poller) pollOnce(ctx context.Context) {
	listed, err := p.source.ListModeratedSubreddits(ctx)
	if err != nil {
		metrics.ModLogPollErrorsTotal.Inc()
		log.Error().Err(err).Msg("ingest: failed to list moderated subreddits")
		return
	}

	subreddits := mergeSubreddits(listed, p.config.ExtraSubreddits)
	metrics.TrackedSubredditsTotal.Set(float64(len(subreddits)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for _, subreddit := range subreddits {
		g.Go(func() error {
			if err := p.pollSubreddit(gctx, subreddit); err != nil {
				metrics.ModLogPollErrorsTotal.Inc()
				log.Error().Err(err).Str("subreddit", subreddit).Msg("ingest: poll failed")
			}
			// Failures degrade per community; never cancel the group.
			return nil
		})
	}

	g.Wait()
}

// mergeSubreddits unions the two lists, dropping case-insensitive duplicates
// while preserving order.
func mergeSubreddits(listed, extra []string) []string {
	seen := make(map[string]struct{}, len(listed)+len(extra))
	merged := make([]string, 0, len(listed)+len(extra))
	for _, name := range append(append([]string{}, listed...), extra...) {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, name)
	}
	return merged
}

func (p *Poller) pollSubreddit(ctx context.Context, subreddit string) error {
	entries, err := p.source.FetchModLog(ctx, subreddit, reddit.ModLogParams{
		Limit: p.config.PageSize,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	seen := p.lastSeen[subreddit]
	p.mu.Unlock()

	fresh := make([]modlog.Entry, 0, len(entries))
	newest := seen
	for _, entry := range entries {
		if entry.Timestamp <= seen {
			continue
		}
		fresh = append(fresh, entry)
		if entry.Timestamp > newest {
			newest = entry.Timestamp
		}
	}

	if len(fresh) == 0 {
		return nil
	}

	if err := p.store.InsertMany(ctx, subreddit, fresh); err != nil {
		return err
	}

	p.mu.Lock()
	p.lastSeen[subreddit] = newest
	p.mu.Unlock()

	metrics.ModLogEntriesIngestedTotal.WithLabelValues(subreddit).Add(float64(len(fresh)))

	log.Debug().
		Str("subreddit", subreddit).
		Int("entries", len(fresh)).
		Msg("ingest: stored new mod log entries")

	return nil
}
