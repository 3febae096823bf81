package subconfig

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CacheTTL is how long a resolved configuration remains valid
const CacheTTL = 5 * time.Minute

// cachedConfig holds one resolved configuration and its resolution time.
type cachedConfig struct {
	config    Config
	timestamp time.Time
}

// CachedResolver wraps a Resolver with a per-community TTL cache so that
// repeated report requests do not hit storage for every lookup.
type CachedResolver struct {
	inner *Resolver
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cachedConfig
}

// NewCachedResolver wraps the given resolver. A zero ttl uses CacheTTL.
func NewCachedResolver(inner *Resolver, ttl time.Duration) *CachedResolver {
	if ttl == 0 {
		ttl = CacheTTL
	}
	return &CachedResolver{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cachedConfig),
	}
}

// Resolve returns the effective configuration for a community, serving from
// cache when a fresh entry exists. Failures are never cached.
func (c *CachedResolver) Resolve(ctx context.Context, subreddit string) (Config, error) {
	key := strings.ToLower(subreddit)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.timestamp) < c.ttl {
		return entry.config, nil
	}

	cfg, err := c.inner.Resolve(ctx, subreddit)
	if err != nil {
		return Config{}, err
	}

	c.mu.Lock()
	c.entries[key] = cachedConfig{config: cfg, timestamp: time.Now()}
	c.mu.Unlock()

	return cfg, nil
}

// Invalidate removes a community's cached configuration.
func (c *CachedResolver) Invalidate(subreddit string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.ToLower(subreddit))
}

// Cleanup removes expired entries (call periodically)
func (c *CachedResolver) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl*2 {
			delete(c.entries, key)
		}
	}
}

// StartCleanupRoutine launches a background goroutine that evicts expired
// entries every interval. The returned function stops it.
func (c *CachedResolver) StartCleanupRoutine(interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
	return func() { close(stop) }
}
