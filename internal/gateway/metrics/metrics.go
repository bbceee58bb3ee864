package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for calls to the sanctions search service.
type Metrics struct {
	// Request latencies by gateway operation
	RequestLatency *prometheus.HistogramVec

	// Request outcomes by operation and status class ("2xx", "4xx", "5xx", "error")
	RequestOutcome *prometheus.CounterVec
}

// New creates a new Metrics instance with all gateway metrics registered.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "watchgate_gateway_request_duration_seconds",
			Help:    "Duration of requests to the sanctions search service by operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),

		RequestOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_gateway_requests_total",
			Help: "Total gateway requests by operation and outcome class",
		}, []string{"operation", "outcome"}),
	}
}

// ObserveRequest records one gateway call.
func (m *Metrics) ObserveRequest(operation, outcome string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(operation).Observe(d.Seconds())
		m.RequestOutcome.WithLabelValues(operation, outcome).Inc()
	}
}
