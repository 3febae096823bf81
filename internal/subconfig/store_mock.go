package subconfig

import "context"

// MockStore is a mock implementation of Store for testing.
// Set the function field to control behavior; unset, it reports no override.
type MockStore struct {
	FindOverrideFunc func(ctx context.Context, subreddit string) (*Override, error)
}

func (m *MockStore) FindOverride(ctx context.Context, subreddit string) (*Override, error) {
	if m.FindOverrideFunc != nil {
		return m.FindOverrideFunc(ctx, subreddit)
	}
	return nil, nil
}

var _ Store = (*MockStore)(nil)
