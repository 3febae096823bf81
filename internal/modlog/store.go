package modlog

import "context"

// Store defines persistent storage for moderation-log entries.
// Entries are partitioned per community and kept in chronological order.
// All methods accept a context.Context to support cancellation and
// request-scoped values.
type Store interface {
	// GetEntries returns every stored entry for the given community in
	// chronological order.
	GetEntries(ctx context.Context, subreddit string) ([]Entry, error)

	// InsertMany stores a batch of entries under the community's partition.
	InsertMany(ctx context.Context, subreddit string, entries []Entry) error

	// Clear removes all entries for the given community.
	Clear(ctx context.Context, subreddit string) error
}
