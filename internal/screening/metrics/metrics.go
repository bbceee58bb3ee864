package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the screening module.
type Metrics struct {
	// Searches executed and their end-to-end latency (gateway call included)
	Searches      prometheus.Counter
	SearchLatency prometheus.Histogram

	// Review-queue entries by flag reason ("sanctioned", "pep", "manual")
	Flags *prometheus.CounterVec

	// Disposition mutations by action and outcome
	Dispositions *prometheus.CounterVec

	// Review decisions by decision value
	ReviewDecisions *prometheus.CounterVec

	// Post-search reconciliation polling
	ReconcileAttempts prometheus.Counter
	ReconcileOutcomes *prometheus.CounterVec
}

// New creates a new Metrics instance with all screening metrics registered.
func New() *Metrics {
	return &Metrics{
		Searches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "watchgate_screening_searches_total",
			Help: "Total screening searches executed",
		}),

		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "watchgate_screening_search_duration_seconds",
			Help:    "Duration of screening searches including the upstream call",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		Flags: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_screening_flags_total",
			Help: "Total entities flagged for review by reason",
		}, []string{"reason"}),

		Dispositions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_screening_dispositions_total",
			Help: "Total disposition mutations by action and outcome",
		}, []string{"action", "outcome"}),

		ReviewDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_screening_review_decisions_total",
			Help: "Total review decisions recorded by decision value",
		}, []string{"decision"}),

		ReconcileAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "watchgate_screening_reconcile_attempts_total",
			Help: "Total post-search reconciliation polls against the search service",
		}),

		ReconcileOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watchgate_screening_reconcile_outcomes_total",
			Help: "Total reconciliation runs by outcome",
		}, []string{"outcome"}),
	}
}

// RegisterActiveSessions exposes the session manager's live-session count as
// a gauge. Call once at wiring time.
func RegisterActiveSessions(f func() float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "watchgate_screening_sessions_active",
		Help: "Screening sessions currently held by the session manager",
	}, f)
}

// ObserveSearch records one executed search and its duration.
func (m *Metrics) ObserveSearch(d time.Duration) {
	if m != nil {
		m.Searches.Inc()
		m.SearchLatency.Observe(d.Seconds())
	}
}

// IncrementFlag records a review-queue flag by reason.
func (m *Metrics) IncrementFlag(reason string) {
	if m != nil {
		m.Flags.WithLabelValues(reason).Inc()
	}
}

// IncrementDisposition records a disposition mutation.
func (m *Metrics) IncrementDisposition(action, outcome string) {
	if m != nil {
		m.Dispositions.WithLabelValues(action, outcome).Inc()
	}
}

// IncrementReviewDecision records a recorded review decision.
func (m *Metrics) IncrementReviewDecision(decision string) {
	if m != nil {
		m.ReviewDecisions.WithLabelValues(decision).Inc()
	}
}

// IncrementReconcileAttempt records one reconciliation poll.
func (m *Metrics) IncrementReconcileAttempt() {
	if m != nil {
		m.ReconcileAttempts.Inc()
	}
}

// IncrementReconcileOutcome records the terminal outcome of a reconciliation run.
func (m *Metrics) IncrementReconcileOutcome(outcome string) {
	if m != nil {
		m.ReconcileOutcomes.WithLabelValues(outcome).Inc()
	}
}
