package modlog

import "context"

// MockStore is a mock implementation of the Store interface for testing.
// Uses function fields to allow tests to inject custom behavior.
type MockStore struct {
	GetEntriesFunc func(ctx context.Context, subreddit string) ([]Entry, error)
	InsertManyFunc func(ctx context.Context, subreddit string, entries []Entry) error
	ClearFunc      func(ctx context.Context, subreddit string) error
}

// GetEntries calls the mock function or returns nil if not set
func (m *MockStore) GetEntries(ctx context.Context, subreddit string) ([]Entry, error) {
	if m.GetEntriesFunc != nil {
		return m.GetEntriesFunc(ctx, subreddit)
	}
	return nil, nil
}

// InsertMany calls the mock function or returns nil if not set
func (m *MockStore) InsertMany(ctx context.Context, subreddit string, entries []Entry) error {
	if m.InsertManyFunc != nil {
		return m.InsertManyFunc(ctx, subreddit, entries)
	}
	return nil
}

// Clear calls the mock function or returns nil if not set
func (m *MockStore) Clear(ctx context.Context, subreddit string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, subreddit)
	}
	return nil
}
