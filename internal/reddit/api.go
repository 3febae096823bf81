package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"modsentry/internal/modlog"
	"modsentry/internal/tracing"

	"github.com/google/go-querystring/query"
)

// API exposes the high-level platform calls the service consumes. All
// calls go through a single Transport, so wiring an InstrumentedTransport
// here observes every one of them.
type API struct {
	transport Transport
}

// NewAPI creates the API layer over the given transport.
func NewAPI(transport Transport) *API {
	return &API{transport: transport}
}

// ModLogParams are the listing parameters for a mod-log fetch.
type ModLogParams struct {
	Limit int    `url:"limit,omitempty"`
	After string `url:"after,omitempty"`
	Mod   string `url:"mod,omitempty"`
}

// listing is the platform's generic envelope for paged collections.
type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// modLogItem is one raw mod-log row as the platform returns it.
type modLogItem struct {
	Subreddit       string  `json:"subreddit"`
	TargetAuthor    string  `json:"target_author"`
	Mod             string  `json:"mod"`
	Action          string  `json:"action"`
	CreatedUTC      float64 `json:"created_utc"`
	TargetPermalink string  `json:"target_permalink"`
	TargetTitle     string  `json:"target_title"`
	TargetBody      string  `json:"target_body"`
}

// FetchModLog retrieves one page of the moderation log for a community.
func (a *API) FetchModLog(ctx context.Context, subreddit string, params ModLogParams) (entries []modlog.Entry, err error) {
	ctx, span := tracing.APISpan(ctx, "fetchModLog", "/r/"+subreddit+"/about/log", subreddit)
	defer func() {
		tracing.EndWithError(span, err)
		span.End()
	}()

	q, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mod log params: %w", err)
	}

	req := newRequest(http.MethodGet, "/r/"+url.PathEscape(subreddit)+"/about/log")
	req.Query = q

	resp, err := a.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mod log for %s: %w", subreddit, err)
	}

	var page listing
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse mod log listing: %w", err)
	}

	entries = make([]modlog.Entry, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		var item modLogItem
		if err := json.Unmarshal(child.Data, &item); err != nil {
			continue
		}
		entries = append(entries, modlog.Entry{
			Subreddit: item.Subreddit,
			Author:    item.TargetAuthor,
			Mod:       item.Mod,
			Action:    item.Action,
			Kind:      modlog.KindForAction(item.Action),
			Timestamp: int64(item.CreatedUTC * 1000),
			Permalink: item.TargetPermalink,
			Title:     item.TargetTitle,
			Body:      item.TargetBody,
		})
	}

	return entries, nil
}

// subredditItem is one raw subreddit row.
type subredditItem struct {
	DisplayName string `json:"display_name"`
}

// ListModeratedSubreddits returns the display names of every community the
// authenticated account moderates.
func (a *API) ListModeratedSubreddits(ctx context.Context) (names []string, err error) {
	ctx, span := tracing.APISpan(ctx, "listModerated", "/subreddits/mine/moderator", "")
	defer func() {
		tracing.EndWithError(span, err)
		span.End()
	}()

	req := newRequest(http.MethodGet, "/subreddits/mine/moderator")
	req.Query.Set("limit", "100")

	resp, err := a.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderated subreddits: %w", err)
	}

	var page listing
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse subreddit listing: %w", err)
	}

	names = make([]string, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		var item subredditItem
		if err := json.Unmarshal(child.Data, &item); err != nil {
			continue
		}
		names = append(names, item.DisplayName)
	}

	return names, nil
}

// wikiPage is the platform's wiki page envelope.
type wikiPage struct {
	Data struct {
		ContentMD string `json:"content_md"`
	} `json:"data"`
}

// GetWikiPage retrieves the markdown source of a community wiki page.
func (a *API) GetWikiPage(ctx context.Context, subreddit, page string) (string, error) {
	req := newRequest(http.MethodGet, "/r/"+url.PathEscape(subreddit)+"/wiki/"+url.PathEscape(page))

	resp, err := a.transport.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch wiki page %s/%s: %w", subreddit, page, err)
	}

	var wiki wikiPage
	if err := json.Unmarshal(resp.Body, &wiki); err != nil {
		return "", fmt.Errorf("failed to parse wiki page: %w", err)
	}

	return wiki.Data.ContentMD, nil
}

// Message is one inbox item.
type Message struct {
	Author     string  `json:"author"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
}

// FetchUnreadMessages returns the authenticated account's unread inbox.
func (a *API) FetchUnreadMessages(ctx context.Context) ([]Message, error) {
	req := newRequest(http.MethodGet, "/message/unread")

	resp, err := a.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread messages: %w", err)
	}

	var page listing
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse inbox listing: %w", err)
	}

	messages := make([]Message, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		var msg Message
		if err := json.Unmarshal(child.Data, &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// SendMessage sends a private message from the bot account.
func (a *API) SendMessage(ctx context.Context, to, subject, text string) error {
	req := newRequest(http.MethodPost, "/api/compose")
	req.Body.Set("to", to)
	req.Body.Set("subject", subject)
	req.Body.Set("text", text)

	if _, err := a.transport.Do(ctx, req); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	return nil
}

// AcceptModeratorInvite accepts a pending moderator invitation.
func (a *API) AcceptModeratorInvite(ctx context.Context, subreddit string) error {
	req := newRequest(http.MethodPost, "/r/"+url.PathEscape(subreddit)+"/api/accept_moderator_invite")
	req.Body.Set("api_type", "json")

	if _, err := a.transport.Do(ctx, req); err != nil {
		return fmt.Errorf("failed to accept moderator invite for %s: %w", subreddit, err)
	}
	return nil
}
