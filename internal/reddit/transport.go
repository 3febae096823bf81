// Package reddit provides the platform API client: a low-level transport
// with OAuth token handling, an instrumentation decorator, and thin
// wrappers for the API calls the rest of the service consumes.
package reddit

import (
	"context"
	"fmt"
	"net/url"
)

// DefaultBaseURL is the authenticated API host.
const DefaultBaseURL = "https://oauth.reddit.com"

// DefaultAuthURL is the host used for token refresh.
const DefaultAuthURL = "https://www.reddit.com"

// Request describes one raw API request before it is issued.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   url.Values

	// TokenRefresh marks authentication calls. They are exempt from
	// instrumentation: no metric is constructed or reported for them.
	TokenRefresh bool
}

// Response is the raw result of an API request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport issues raw HTTP requests against the platform API. It is the
// single primitive every higher-level call goes through, which is what
// makes decorator-style instrumentation possible.
type Transport interface {
	// Do issues the request and returns the raw response. Non-2xx
	// responses are returned as an *APIError.
	Do(ctx context.Context, req *Request) (*Response, error)

	// RateLimitRemaining reports the live rate-limit budget as of the most
	// recently completed call.
	RateLimitRemaining() float64

	// BaseURL is the API host requests are issued against.
	BaseURL() string
}

// APIError is returned when the platform answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit: %s (status %d)", e.Message, e.StatusCode)
}

// newRequest builds an empty request for the given method and path.
func newRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Query:  url.Values{},
		Body:   url.Values{},
	}
}
