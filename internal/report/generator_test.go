package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"modsentry/internal/modlog"
	"modsentry/internal/period"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// ms returns the epoch-millisecond timestamp d before the reference time.
func ms(d time.Duration) int64 {
	return testNow.Add(-d).UnixMilli()
}

func TestParseUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"foo", "foo"},
		{"u/foo", "foo"},
		{"/u/foo", "foo"},
		{"/u/Foo", "Foo"},
		{"U/foo", "U/foo"},
		{"/U/foo", "/U/foo"},
		{"u/u/foo", "u/foo"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseUsername(tt.input))
		})
	}
}

func TestGenerate_FiltersAndPartitions(t *testing.T) {
	entries := []modlog.Entry{
		{Subreddit: "somesub", Author: "homer", Kind: modlog.KindComment, Action: "removecomment", Timestamp: ms(24 * time.Hour)},
		{Subreddit: "somesub", Author: "homer", Kind: modlog.KindSubmission, Action: "removelink", Timestamp: ms(48 * time.Hour)},
		{Subreddit: "somesub", Author: "homer", Kind: modlog.KindComment, Action: "removecomment", Timestamp: ms(12 * time.Hour)},
		// Wrong author
		{Subreddit: "somesub", Author: "bart", Kind: modlog.KindComment, Timestamp: ms(24 * time.Hour)},
		// Too old
		{Subreddit: "somesub", Author: "homer", Kind: modlog.KindComment, Timestamp: ms(90 * 24 * time.Hour)},
		// Not a removal
		{Subreddit: "somesub", Author: "homer", Kind: modlog.KindOther, Action: "banuser", Timestamp: ms(6 * time.Hour)},
	}

	store := &modlog.MockStore{
		GetEntriesFunc: func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			assert.Equal(t, "somesub", subreddit)
			return entries, nil
		},
	}
	g := NewGenerator(store).WithClock(fixedClock)

	rep, err := g.Generate(context.Background(), Input{
		Username:  "homer",
		Subreddit: "somesub",
		Period:    "2 months",
	})
	require.NoError(t, err)

	require.Len(t, rep.RemovedComments, 2)
	require.Len(t, rep.RemovedSubmissions, 1)
	assert.Equal(t, "2 months", rep.ParsedPeriod)

	// Relative order within each partition is preserved.
	assert.Equal(t, ms(24*time.Hour), rep.RemovedComments[0].Timestamp)
	assert.Equal(t, ms(12*time.Hour), rep.RemovedComments[1].Timestamp)

	// Every returned entry satisfies the filter predicates.
	cutoff := mustCutoff(t, "2 months")
	for _, e := range append(rep.RemovedComments, rep.RemovedSubmissions...) {
		assert.Equal(t, "homer", e.Author)
		assert.Equal(t, "somesub", e.Subreddit)
		assert.GreaterOrEqual(t, e.Timestamp, cutoff)
	}
}

func mustCutoff(t *testing.T, text string) int64 {
	t.Helper()
	p, err := period.Parse(text, testNow)
	require.NoError(t, err)
	return p.CutoffMillis()
}

func TestGenerate_UsernamePrefixIsNormalized(t *testing.T) {
	store := &modlog.MockStore{
		GetEntriesFunc: func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			return []modlog.Entry{
				{Subreddit: "somesub", Author: "homer", Kind: modlog.KindComment, Timestamp: ms(time.Hour)},
			}, nil
		},
	}
	g := NewGenerator(store).WithClock(fixedClock)

	rep, err := g.Generate(context.Background(), Input{Username: "/u/homer", Subreddit: "somesub", Period: "3 months"})
	require.NoError(t, err)
	assert.Len(t, rep.RemovedComments, 1)
}

func TestGenerate_AuthorMatchIsCaseSensitive(t *testing.T) {
	store := &modlog.MockStore{
		GetEntriesFunc: func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			return []modlog.Entry{
				{Subreddit: "somesub", Author: "Homer", Kind: modlog.KindComment, Timestamp: ms(time.Hour)},
			}, nil
		},
	}
	g := NewGenerator(store).WithClock(fixedClock)

	rep, err := g.Generate(context.Background(), Input{Username: "homer", Subreddit: "somesub", Period: "1 week"})
	require.NoError(t, err)
	assert.Empty(t, rep.RemovedComments)
}

func TestGenerate_InvalidPeriodSurfaces(t *testing.T) {
	called := false
	store := &modlog.MockStore{
		GetEntriesFunc: func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			called = true
			return nil, nil
		},
	}
	g := NewGenerator(store).WithClock(fixedClock)

	_, err := g.Generate(context.Background(), Input{Username: "homer", Subreddit: "somesub", Period: "whenever"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, period.ErrInvalidPeriod))
	assert.False(t, called, "no store read on parse failure")
}

func TestGenerate_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("db closed")
	store := &modlog.MockStore{
		GetEntriesFunc: func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			return nil, storeErr
		},
	}
	g := NewGenerator(store).WithClock(fixedClock)

	_, err := g.Generate(context.Background(), Input{Username: "homer", Subreddit: "somesub", Period: "1 week"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storeErr))
}

func TestGenerate_OnlyRequestedCommunity(t *testing.T) {
	// End-to-end shape from the store's perspective: entries for another
	// community never enter the report because the store partitions reads.
	store := &modlog.MockStore{
		GetEntriesFunc: func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			if subreddit == "x" {
				return []modlog.Entry{
					{Subreddit: "x", Author: "homer", Kind: modlog.KindComment, Timestamp: ms(time.Hour)},
				}, nil
			}
			return nil, nil
		},
	}
	g := NewGenerator(store).WithClock(fixedClock)

	rep, err := g.Generate(context.Background(), Input{Username: "homer", Subreddit: "x", Period: "3 months"})
	require.NoError(t, err)
	require.Len(t, rep.RemovedComments, 1)
	assert.Equal(t, "x", rep.RemovedComments[0].Subreddit)
	assert.Empty(t, rep.RemovedSubmissions)
	assert.Equal(t, "3 months", rep.ParsedPeriod)
}
