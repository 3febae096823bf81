package reddit

import (
	"context"
	"errors"

	"modsentry/internal/metrics"
)

// InstrumentedTransport decorates a Transport so that every eligible call
// is observed and reported as exactly one metric, on both the success and
// the failure path, without altering the call's result or error. It
// implements the same interface it wraps; no subclassing involved.
type InstrumentedTransport struct {
	next Transport
	sink metrics.Sink
}

// NewInstrumentedTransport wraps next so its calls feed the given sink.
func NewInstrumentedTransport(next Transport, sink metrics.Sink) *InstrumentedTransport {
	return &InstrumentedTransport{
		next: next,
		sink: sink,
	}
}

// Ensure InstrumentedTransport implements the interface at compile time.
var _ Transport = (*InstrumentedTransport)(nil)

// Do observes one call. Token-refresh requests pass through untouched, with
// no metric constructed. For everything else the request descriptor is
// captured before any network I/O; the rate-limit snapshot is deliberately
// read after completion, so it reflects post-call state rather than the
// budget at construction time.
func (t *InstrumentedTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.TokenRefresh {
		return t.next.Do(ctx, req)
	}

	m := metrics.NewMetric(metrics.MetricTypeAPI, metrics.RequestInfo{
		BaseURL: t.next.BaseURL(),
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query.Encode(),
		Body:    req.Body.Encode(),
	})

	resp, err := t.next.Do(ctx, req)

	callCtx := metrics.CallContext{RateLimitRemaining: t.next.RateLimitRemaining()}
	if err != nil {
		m.Report(t.sink, outcomeFromError(err), callCtx)
		return resp, err
	}

	m.Report(t.sink, nil, callCtx)
	return resp, nil
}

// RateLimitRemaining exposes the wrapped transport's live budget.
func (t *InstrumentedTransport) RateLimitRemaining() float64 {
	return t.next.RateLimitRemaining()
}

// BaseURL exposes the wrapped transport's API host.
func (t *InstrumentedTransport) BaseURL() string {
	return t.next.BaseURL()
}

// outcomeFromError turns a transport failure into a metric outcome. API
// errors carry their HTTP status; anything else records status zero with
// the error text.
func outcomeFromError(err error) *metrics.Outcome {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &metrics.Outcome{
			Status:  apiErr.StatusCode,
			Message: apiErr.Message,
		}
	}
	return &metrics.Outcome{Message: err.Error()}
}
