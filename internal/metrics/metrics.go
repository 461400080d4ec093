// Package metrics records IDM client round trips as Prometheus metrics. The
// CLI writes them to a node_exporter textfile with --metrics-out.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/idmkit/idm-cli/internal/api"
)

// RequestBuckets covers interactive API latencies in seconds.
var RequestBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// ClientMetrics implements api.Observer and api.RoundTripObserver.
type ClientMetrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	UnauthorizedTotal prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

var (
	_ api.Observer          = (*ClientMetrics)(nil)
	_ api.RoundTripObserver = (*ClientMetrics)(nil)
)

// NewClientMetrics registers the collectors on a fresh registry.
func NewClientMetrics(namespace string) *ClientMetrics {
	reg := prometheus.NewRegistry()
	return NewClientMetricsWithRegistry(namespace, reg, reg)
}

// NewClientMetricsWithRegistry registers on registerer; gatherer is used by
// WriteTextfile and may be nil when the caller exports metrics itself.
func NewClientMetricsWithRegistry(namespace string, registerer prometheus.Registerer, gatherer prometheus.Gatherer) *ClientMetrics {
	factory := promauto.With(registerer)

	return &ClientMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "IDM API requests by operation and status code (0 = no response)",
			},
			[]string{"operation", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "IDM API request latency in seconds",
				Buckets:   RequestBuckets,
			},
			[]string{"operation"},
		),
		UnauthorizedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "unauthorized_total",
				Help:      "Responses with status 401",
			},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "errors_total",
				Help:      "Failed IDM API requests other than 401, by error code",
			},
			[]string{"operation", "code"},
		),
		gatherer: gatherer,
	}
}

// OnRoundTrip records every call.
func (m *ClientMetrics) OnRoundTrip(_ context.Context, rt api.RoundTrip) {
	m.RequestsTotal.WithLabelValues(rt.Operation, rt.Method, strconv.Itoa(rt.StatusCode)).Inc()
	m.RequestDuration.WithLabelValues(rt.Operation).Observe(rt.Duration.Seconds())
}

func (m *ClientMetrics) OnUnauthorized(context.Context, *api.APIError) {
	m.UnauthorizedTotal.Inc()
}

func (m *ClientMetrics) OnError(_ context.Context, err *api.APIError) {
	m.ErrorsTotal.WithLabelValues(err.Operation, string(api.ErrorCodeFromStatus(err.StatusCode))).Inc()
}

// WriteTextfile writes the gathered metrics in the text exposition format.
func (m *ClientMetrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.gatherer)
}
