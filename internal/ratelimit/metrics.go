package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the rate limiter.
type Metrics struct {
	Throttled prometheus.Counter
}

// NewMetrics registers the rate limiter's metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Throttled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "watchgate_ratelimit_throttled_total",
			Help: "Total requests rejected by the search rate limiter",
		}),
	}
}

// IncrementThrottled counts one rejected request. Safe on a nil receiver.
func (m *Metrics) IncrementThrottled() {
	if m == nil {
		return
	}
	m.Throttled.Inc()
}
