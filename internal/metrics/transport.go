package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusError labels requests that never produced a response.
const statusError = "error"

// API request metrics
var (
	// RequestsTotal counts API requests by operation, method, and status code
	RequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of events API requests",
		},
		[]string{"operation", "method", "status"}, // status: HTTP code or "error"
	)

	// RequestDuration records round-trip latency in seconds
	RequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Events API round-trip latency in seconds",
			// Buckets: 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s, 30s
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "method"},
	)

	// RequestsInFlight tracks requests awaiting a response
	RequestsInFlight = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Current number of events API requests awaiting a response",
		},
	)

	// ResponseSize records the declared size of response bodies in bytes
	ResponseSize = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "Events API response body size in bytes",
			// Buckets: 100B, 1KB, 10KB, 100KB, 1MB, 10MB
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"operation", "method"},
	)
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Transport returns a transport wrapper that records request metrics. label
// names the operation for a request; an empty name is recorded as "unknown".
func Transport(label func(*http.Request) string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		counted := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			op := label(r)
			if op == "" {
				op = "unknown"
			}

			start := time.Now()
			resp, err := next.RoundTrip(r)
			RequestDuration.WithLabelValues(op, r.Method).Observe(time.Since(start).Seconds())

			if err != nil {
				RequestsTotal.WithLabelValues(op, r.Method, statusError).Inc()
				return nil, err
			}

			RequestsTotal.WithLabelValues(op, r.Method, strconv.Itoa(resp.StatusCode)).Inc()
			if resp.ContentLength >= 0 {
				ResponseSize.WithLabelValues(op, r.Method).Observe(float64(resp.ContentLength))
			}
			return resp, nil
		})
		return promhttp.InstrumentRoundTripperInFlight(RequestsInFlight, counted)
	}
}
