package handlers

import (
	"time"

	"modsentry/internal/modlog"
	"modsentry/internal/report"
	"modsentry/internal/subconfig"
)

// testNow is the fixed reference clock used by handler tests.
var testNow = time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC)

// TestFixtures contains sample data for testing
type TestFixtures struct {
	Entries []modlog.Entry
}

// NewTestFixtures creates a set of sample test data
func NewTestFixtures() *TestFixtures {
	base := testNow.AddDate(0, 0, -3).UnixMilli()

	return &TestFixtures{
		Entries: []modlog.Entry{
			{
				Subreddit: "books",
				Author:    "homer",
				Mod:       "marge",
				Action:    "removecomment",
				Kind:      modlog.KindComment,
				Timestamp: base,
				Permalink: "/r/books/comments/abc/x/c1",
				Body:      "first removed comment",
			},
			{
				Subreddit: "books",
				Author:    "homer",
				Mod:       "marge",
				Action:    "removelink",
				Kind:      modlog.KindSubmission,
				Timestamp: base + 1000,
				Permalink: "/r/books/comments/def",
				Title:     "removed submission",
			},
			{
				Subreddit: "books",
				Author:    "bart",
				Mod:       "ned",
				Action:    "removecomment",
				Kind:      modlog.KindComment,
				Timestamp: base + 2000,
				Permalink: "/r/books/comments/ghi/x/c2",
				Body:      "someone else's comment",
			},
		},
	}
}

// TestContext contains test dependencies
type TestContext struct {
	Handler     *Handler
	LogStore    *modlog.MockStore
	ConfigStore *subconfig.MockStore
	Fixtures    *TestFixtures
}

// NewTestContext creates a test context with mock dependencies
func NewTestContext() *TestContext {
	logStore := &modlog.MockStore{}
	configStore := &subconfig.MockStore{}
	fixtures := NewTestFixtures()

	generator := report.NewGenerator(logStore).WithClock(func() time.Time { return testNow })
	resolver := subconfig.NewResolver(configStore, subconfig.Defaults(false))

	return &TestContext{
		Handler:     NewHandler(generator, resolver, logStore),
		LogStore:    logStore,
		ConfigStore: configStore,
		Fixtures:    fixtures,
	}
}
