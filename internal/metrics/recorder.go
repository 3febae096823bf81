package metrics

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

// MetricTypeAPI is the category used for platform API calls.
const MetricTypeAPI = "reddit-api"

// RequestInfo is the outbound request descriptor captured at call time,
// before the call resolves.
type RequestInfo struct {
	BaseURL string
	Method  string
	Path    string
	Query   string
	Body    string
}

// Outcome describes a failed call. A nil Outcome means success.
type Outcome struct {
	Status  int
	Message string
}

// CallContext carries side information known only once the call has
// completed, such as the rate-limit budget remaining at that moment.
type CallContext struct {
	RateLimitRemaining float64
}

// Metric is one observed external call. It is constructed immediately
// before the underlying call is issued and reported exactly once when the
// outcome is known. Token-refresh calls never get a Metric.
type Metric struct {
	Type    string
	Request RequestInfo
	Outcome *Outcome
	Context CallContext

	reported bool
}

// NewMetric captures the request descriptor for a call about to be issued.
func NewMetric(metricType string, req RequestInfo) *Metric {
	return &Metric{
		Type:    metricType,
		Request: req,
	}
}

// Report finalizes the metric with the outcome known at this point and
// hands it to the sink. A Metric is reported at most once; later calls are
// no-ops. Reporting is best-effort: a panicking sink is contained here so
// it can never affect the wrapped call's result or error.
func (m *Metric) Report(sink Sink, outcome *Outcome, callCtx CallContext) {
	if m == nil || m.reported {
		return
	}
	m.reported = true
	m.Outcome = outcome
	m.Context = callCtx

	if sink == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("metrics: sink failed to record metric")
		}
	}()

	sink.Report(*m)
}

// Sink receives finalized metrics. Implementations are fire-and-forget:
// they must not block and have no way to fail the caller.
type Sink interface {
	Report(Metric)
}

// PromSink records metrics into the package's prometheus collectors and
// emits a debug log line per observed call.
type PromSink struct{}

// Report implements Sink.
func (PromSink) Report(m Metric) {
	status := "ok"
	if m.Outcome != nil {
		status = strconv.Itoa(m.Outcome.Status)
	}

	APIRequestsTotal.WithLabelValues(m.Type, m.Request.Method, m.Request.Path, status).Inc()
	APIRateLimitRemaining.Set(m.Context.RateLimitRemaining)

	evt := log.Debug().
		Str("type", m.Type).
		Str("method", m.Request.Method).
		Str("path", m.Request.Path).
		Float64("rate_limit_remaining", m.Context.RateLimitRemaining)
	if m.Outcome != nil {
		evt = evt.Int("status", m.Outcome.Status).Str("error", m.Outcome.Message)
	}
	evt.Msg("metrics: api call observed")
}
