package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Credentials holds the script-app credentials used for the password grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Options configures the low-level client.
type Options struct {
	Credentials Credentials

	// BaseURL for authenticated API calls. Defaults to DefaultBaseURL.
	BaseURL string

	// AuthURL for token refresh. Defaults to DefaultAuthURL.
	AuthURL string

	// HTTPClient to issue requests with. If nil, a client with an
	// otelhttp-instrumented transport and a 30s timeout is used.
	HTTPClient *http.Client
}

// Client is the real Transport implementation. It owns OAuth token
// lifecycle and tracks the platform's rate-limit budget from response
// headers. It performs no retries or backoff; callers observe every
// outcome as-is.
type Client struct {
	creds      Credentials
	baseURL    string
	authURL    string
	httpClient *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time

	rateMu             sync.RWMutex
	rateLimitRemaining float64
}

// NewClient creates a client from the given options, filling in defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		}
	}

	return &Client{
		creds:      opts.Credentials,
		baseURL:    opts.BaseURL,
		authURL:    opts.AuthURL,
		httpClient: opts.HTTPClient,
	}
}

// Ensure Client implements the interface at compile time.
var _ Transport = (*Client)(nil)

// Do issues one raw request. Token-refresh requests go straight to the
// auth host with basic auth; everything else gets a bearer token, which is
// refreshed first if expired.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.TokenRefresh {
		return c.doTokenRefresh(ctx, req)
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = strings.NewReader(req.Body.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("User-Agent", c.creds.UserAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer resp.Body.Close()

	c.updateRateLimit(resp.Header)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}

// BaseURL returns the API host this client issues requests against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RateLimitRemaining returns the budget reported by the most recently
// completed call.
func (c *Client) RateLimitRemaining() float64 {
	c.rateMu.RLock()
	defer c.rateMu.RUnlock()
	return c.rateLimitRemaining
}

func (c *Client) updateRateLimit(header http.Header) {
	raw := header.Get("X-Ratelimit-Remaining")
	if raw == "" {
		return
	}
	remaining, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	c.rateMu.Lock()
	c.rateLimitRemaining = remaining
	c.rateMu.Unlock()
}

// tokenResponse is the auth host's token grant payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureToken returns a valid bearer token, refreshing it when the cached
// one is missing or about to expire.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Add(30*time.Second).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req := &Request{
		Method:       http.MethodPost,
		Path:         "/api/v1/access_token",
		TokenRefresh: true,
		Body: url.Values{
			"grant_type": {"password"},
			"username":   {c.creds.Username},
			"password":   {c.creds.Password},
		},
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return "", err
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	log.Debug().Time("expires", c.tokenExpiry).Msg("reddit: access token refreshed")

	return c.accessToken, nil
}

// doTokenRefresh hits the auth host with basic-auth client credentials.
func (c *Client) doTokenRefresh(ctx context.Context, req *Request) (*Response, error) {
	endpoint := c.authURL + req.Path

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, strings.NewReader(req.Body.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	httpReq.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	httpReq.Header.Set("User-Agent", c.creds.UserAgent)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}
