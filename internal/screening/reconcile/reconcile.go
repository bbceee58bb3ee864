// Package reconcile resolves the server-assigned search-history id after a
// search. The search endpoint does not return the id, so a background loop
// polls the account's latest history row and binds it to the session when the
// query matches. Blacklist membership is refreshed from the starred set once
// the binding lands.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"watchgate/internal/platform/config"
	"watchgate/internal/screening/metrics"
	"watchgate/internal/screening/ports"
	"watchgate/internal/screening/session"
	id "watchgate/pkg/domain"
)

// Outcome label values for reconcile_outcomes_total.
const (
	OutcomeBound     = "bound"
	OutcomeStale     = "stale"
	OutcomeUnmatched = "unmatched"
	OutcomeCancelled = "cancelled"
)

// Reconciler polls the search service for the history row a search produced.
type Reconciler struct {
	gateway  ports.SearchGateway
	logger   *slog.Logger
	metrics  *metrics.Metrics
	attempts int
	interval time.Duration
}

func New(gateway ports.SearchGateway, cfg config.ReconcileConfig, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		gateway:  gateway,
		logger:   logger,
		metrics:  m,
		attempts: cfg.Attempts,
		interval: cfg.Interval,
	}
}

// Run polls LatestHistory until a row matching query appears or the attempt
// budget runs out. It is called on the session's generation context: a newer
// search or session eviction cancels it. A history row binds only while the
// session generation still equals gen, so a stale run can never clobber a
// newer search's state.
//
// Two rapid identical queries can still bind the wrong row, since the
// histories are textually indistinguishable. The generation guard bounds the
// damage to picking one of two rows for the same query.
func (r *Reconciler) Run(ctx context.Context, sess *session.Session, gen uint64, query string) {
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(r.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				r.metrics.IncrementReconcileOutcome(OutcomeCancelled)
				return
			case <-timer.C:
			}
		}

		r.metrics.IncrementReconcileAttempt()

		record, err := r.gateway.LatestHistory(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.metrics.IncrementReconcileOutcome(OutcomeCancelled)
				return
			}
			r.logger.DebugContext(ctx, "history poll failed",
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		if record.Query != query {
			// The row is not ours yet: either the server has not written it
			// or a concurrent search from the same account got there first.
			r.logger.DebugContext(ctx, "history head does not match issued query",
				"attempt", attempt,
				"want", query,
				"got", record.Query,
			)
			continue
		}

		if !sess.BindSearch(gen, record.SearchID) {
			r.metrics.IncrementReconcileOutcome(OutcomeStale)
			return
		}

		r.refreshStarred(ctx, sess, gen, record.SearchID)
		r.metrics.IncrementReconcileOutcome(OutcomeBound)
		return
	}

	r.logger.WarnContext(ctx, "search history reconciliation unmatched",
		"session_id", sess.ID(),
		"query", query,
		"attempts", r.attempts,
	)
	r.metrics.IncrementReconcileOutcome(OutcomeUnmatched)
}

// refreshStarred replaces the session's blacklist membership with the starred
// set recorded under searchID. A fetch failure leaves membership as-is; the
// binding stays usable either way.
func (r *Reconciler) refreshStarred(ctx context.Context, sess *session.Session, gen uint64, searchID id.SearchID) {
	ids, err := r.gateway.StarredEntityIDs(ctx, searchID)
	if err != nil {
		r.logger.WarnContext(ctx, "starred set refresh failed",
			"session_id", sess.ID(),
			"search_id", searchID,
			"error", err,
		)
		return
	}
	sess.ReplaceBlacklistIf(gen, ids)
}
