// Package service orchestrates screening operations against one analyst
// session at a time: search execution with auto-flagging, whitelist and
// blacklist dispositions, and the review workflow. Collaborator calls always
// happen outside the session mutex; results are applied back under the lock
// and re-validated against the session generation.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"watchgate/internal/domain"
	"watchgate/internal/screening/autoflag"
	"watchgate/internal/screening/metrics"
	"watchgate/internal/screening/ports"
	"watchgate/internal/screening/reconcile"
	"watchgate/internal/screening/session"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/requestcontext"
)

// Service carries the collaborators shared by every screening session.
type Service struct {
	gateway    ports.SearchGateway
	audit      ports.AuditRecorder
	reconciler *reconcile.Reconciler
	rules      []autoflag.Rule
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func New(gateway ports.SearchGateway, auditRecorder ports.AuditRecorder, reconciler *reconcile.Reconciler, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		gateway:    gateway,
		audit:      auditRecorder,
		reconciler: reconciler,
		rules:      autoflag.DefaultRules(),
		logger:     logger,
		metrics:    m,
	}
}

// SearchOutcome is what a search returns synchronously. The history binding
// lands later via the reconciler and is visible through the session summary.
type SearchOutcome struct {
	Results      []session.ResultView
	Total        int
	FlaggedCount int
}

// Search runs the upstream query, installs the result set on the session,
// auto-flags matching entities, and launches the reconciler for the new
// generation. The previous search's reconcile is cancelled by BeginSearch.
func (s *Service) Search(ctx context.Context, sess *session.Session, query domain.SearchQuery) (SearchOutcome, error) {
	start := time.Now()

	records, total, err := s.gateway.SearchEntities(ctx, query)
	if err != nil {
		return SearchOutcome{}, err
	}

	gen, reconcileCtx := sess.BeginSearch(ctx, query.Query, records)

	now := requestcontext.Now(ctx)
	flagged := 0
	for _, record := range records {
		reasons := autoflag.Reasons(s.rules, record)
		if len(reasons) == 0 {
			continue
		}
		created := false
		for _, reason := range reasons {
			if _, c, err := sess.FlagEntity(record, reason, now); err == nil && c {
				created = true
			}
			s.metrics.IncrementFlag(flagLabel(reason))
		}
		if created {
			flagged++
			s.audit.Record(ctx, audit.Event{
				Type:     audit.EventReviewFlagged,
				EntityID: record.ID,
				Reason:   strings.Join(reasons, "; "),
				Details:  map[string]string{"source": "auto"},
			})
		}
	}

	go s.reconciler.Run(reconcileCtx, sess, gen, query.Query)

	s.metrics.ObserveSearch(time.Since(start))
	s.audit.Record(ctx, audit.Event{
		Type: audit.EventSearchExecuted,
		Details: map[string]string{
			"query":   query.Query,
			"results": strconv.Itoa(total),
			"flagged": strconv.Itoa(flagged),
		},
	})

	return SearchOutcome{
		Results:      sess.ResultViews(false),
		Total:        total,
		FlaggedCount: flagged,
	}, nil
}

// Results returns the last result set, optionally hiding whitelisted entities.
func (s *Service) Results(sess *session.Session, hideWhitelisted bool) []session.ResultView {
	return sess.ResultViews(hideWhitelisted)
}

// Summary snapshots the session's externally visible state.
func (s *Service) Summary(sess *session.Session) session.Summary {
	return sess.Summary()
}

// flagLabel maps a flag reason onto its low-cardinality metric label.
func flagLabel(reason string) string {
	switch reason {
	case autoflag.ReasonSanctioned:
		return "sanctioned"
	case autoflag.ReasonPEP:
		return "pep"
	default:
		return "manual"
	}
}
