package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "watchgate/pkg/platform/audit"
)

// Metrics provides observability for the audit pipeline.
type Metrics struct {
	// Events accepted into the inbox, by type
	Recorded *prometheus.CounterVec

	// Events dropped because the inbox was full
	Dropped *prometheus.CounterVec

	// Store append failures (events lost from the trail)
	StoreFailures *prometheus.CounterVec

	// Sink publish failures (store still holds the event)
	SinkFailures *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all audit pipeline metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_audit_events_recorded_total",
			Help: "Total audit events accepted into the worker inbox",
		}, []string{"event_type"}),

		Dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_audit_events_dropped_total",
			Help: "Total audit events dropped because the inbox was full",
		}, []string{"event_type"}),

		StoreFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_audit_store_failures_total",
			Help: "Total audit events the store failed to append",
		}, []string{"event_type"}),

		SinkFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_audit_sink_failures_total",
			Help: "Total audit events the sink failed to publish",
		}, []string{"event_type"}),
	}
}

// ObserveRecorded counts an event accepted into the inbox.
func (m *Metrics) ObserveRecorded(t audit.EventType) {
	if m != nil {
		m.Recorded.WithLabelValues(string(t)).Inc()
	}
}

// ObserveDropped counts an event dropped on a full inbox.
func (m *Metrics) ObserveDropped(t audit.EventType) {
	if m != nil {
		m.Dropped.WithLabelValues(string(t)).Inc()
	}
}

// ObserveStoreFailure counts a failed store append.
func (m *Metrics) ObserveStoreFailure(t audit.EventType) {
	if m != nil {
		m.StoreFailures.WithLabelValues(string(t)).Inc()
	}
}

// ObserveSinkFailure counts a failed sink publish.
func (m *Metrics) ObserveSinkFailure(t audit.EventType) {
	if m != nil {
		m.SinkFailures.WithLabelValues(string(t)).Inc()
	}
}
