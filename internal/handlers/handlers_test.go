package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"modsentry/internal/modlog"
	"modsentry/internal/report"
	"modsentry/internal/subconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(b bool) *bool { return &b }

func TestHandleUserReport_Success(t *testing.T) {
	tc := NewTestContext()
	tc.LogStore.GetEntriesFunc = func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
		assert.Equal(t, "books", subreddit)
		return tc.Fixtures.Entries, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports/user?username=u%2Fhomer&subreddit=books&period=1+week", nil)
	rec := httptest.NewRecorder()

	tc.Handler.HandleUserReport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Len(t, rep.RemovedComments, 1)
	require.Len(t, rep.RemovedSubmissions, 1)
	assert.Equal(t, "homer", rep.RemovedComments[0].Author)
	assert.Equal(t, "1 weeks", rep.ParsedPeriod)
}

func TestHandleUserReport_MissingParams(t *testing.T) {
	tc := NewTestContext()

	for _, target := range []string{
		"/api/reports/user",
		"/api/reports/user?username=homer",
		"/api/reports/user?username=homer&subreddit=books",
		"/api/reports/user?subreddit=books&period=1+week",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		tc.Handler.HandleUserReport(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}

func TestHandleUserReport_InvalidPeriod(t *testing.T) {
	tc := NewTestContext()

	req := httptest.NewRequest(http.MethodGet, "/api/reports/user?username=homer&subreddit=books&period=soon", nil)
	rec := httptest.NewRecorder()

	tc.Handler.HandleUserReport(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "invalid period")
}

func TestHandleUserReport_StoreFailure(t *testing.T) {
	tc := NewTestContext()
	tc.LogStore.GetEntriesFunc = func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
		return nil, errors.New("disk corrupted")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports/user?username=homer&subreddit=books&period=1+week", nil)
	rec := httptest.NewRecorder()

	tc.Handler.HandleUserReport(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Internal detail must not leak into the response body.
	assert.NotContains(t, rec.Body.String(), "disk corrupted")
}

func newConfigRequest(name string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/subreddits/"+name+"/config", nil)
	req.SetPathValue("name", name)
	return req
}

func TestHandleSubredditConfig_DefaultsWhenNoOverride(t *testing.T) {
	tc := NewTestContext()

	rec := httptest.NewRecorder()
	tc.Handler.HandleSubredditConfig(rec, newConfigRequest("books"))

	require.Equal(t, http.StatusOK, rec.Code)

	var cfg subconfig.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, subconfig.Defaults(false), cfg)
}

func TestHandleSubredditConfig_AppliesOverride(t *testing.T) {
	tc := NewTestContext()
	tc.ConfigStore.FindOverrideFunc = func(ctx context.Context, subreddit string) (*subconfig.Override, error) {
		return &subconfig.Override{
			Name:        "books",
			ShowAuthor:  ptr(true),
			ExcludeMods: []string{"AutoModerator"},
		}, nil
	}

	rec := httptest.NewRecorder()
	tc.Handler.HandleSubredditConfig(rec, newConfigRequest("books"))

	require.Equal(t, http.StatusOK, rec.Code)

	var cfg subconfig.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.True(t, cfg.ShowAuthor)
	assert.False(t, cfg.ShowBody)
	assert.Equal(t, []string{"automoderator"}, cfg.ExcludeMods)
}

func TestHandleSubredditConfig_StoreFailure(t *testing.T) {
	tc := NewTestContext()
	tc.ConfigStore.FindOverrideFunc = func(ctx context.Context, subreddit string) (*subconfig.Override, error) {
		return nil, errors.New("bucket missing")
	}

	rec := httptest.NewRecorder()
	tc.Handler.HandleSubredditConfig(rec, newConfigRequest("books"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	t.Run("ok when store reachable", func(t *testing.T) {
		tc := NewTestContext()

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		tc.Handler.HandleHealth(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("unavailable when store probe fails", func(t *testing.T) {
		tc := NewTestContext()
		tc.LogStore.GetEntriesFunc = func(ctx context.Context, subreddit string) ([]modlog.Entry, error) {
			return nil, errors.New("database closed")
		}

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		tc.Handler.HandleHealth(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
