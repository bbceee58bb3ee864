package service

import (
	"context"

	"watchgate/internal/domain"
	"watchgate/internal/gateway"
	"watchgate/internal/screening/session"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/requestcontext"
)

// Metric label values for dispositions_total.
const (
	actionWhitelistAdd    = "whitelist_add"
	actionWhitelistRemove = "whitelist_remove"
	actionBlacklistAdd    = "blacklist_add"
	actionBlacklistRemove = "blacklist_remove"

	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)

// AddToWhitelist whitelists an entity from the current result set. Local-only:
// the collaborator has no whitelist API, so the entry lives with the session.
// Re-adding returns the existing entry with created=false.
func (s *Service) AddToWhitelist(ctx context.Context, sess *session.Session, entityID id.EntityID, reason string) (domain.DispositionEntry, bool, error) {
	entry, created, err := sess.AddToWhitelist(entityID, reason, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		s.metrics.IncrementDisposition(actionWhitelistAdd, outcomeRejected)
		return domain.DispositionEntry{}, false, err
	}

	s.metrics.IncrementDisposition(actionWhitelistAdd, outcomeOK)
	if created {
		s.audit.Record(ctx, audit.Event{
			Type:     audit.EventEntityWhitelisted,
			EntityID: entityID,
			Reason:   reason,
		})
	}
	return entry, created, nil
}

// RemoveFromWhitelist drops an entity's whitelist entry. Removing an absent
// entry is a no-op, reported via the returned bool.
func (s *Service) RemoveFromWhitelist(ctx context.Context, sess *session.Session, entityID id.EntityID) bool {
	removed := sess.RemoveFromWhitelist(entityID)
	if removed {
		s.metrics.IncrementDisposition(actionWhitelistRemove, outcomeOK)
		s.audit.Record(ctx, audit.Event{
			Type:     audit.EventEntityUnwhitelisted,
			EntityID: entityID,
		})
	}
	return removed
}

// WhitelistEntries lists the session's whitelist in decision order.
func (s *Service) WhitelistEntries(sess *session.Session) []domain.DispositionEntry {
	return sess.WhitelistEntries()
}

// BlacklistedIDs lists locally-known blacklist membership.
func (s *Service) BlacklistedIDs(sess *session.Session) []id.EntityID {
	return sess.BlacklistedIDs()
}

// BlacklistEntity stars an entity upstream and marks local membership only
// after the server accepted. Without a bound search id the operation is
// rejected before any state change or network call.
func (s *Service) BlacklistEntity(ctx context.Context, sess *session.Session, entityID id.EntityID, relevanceScore float64) error {
	target, err := sess.BlacklistTarget(entityID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodePrecondition) {
			s.logger.WarnContext(ctx, "blacklist rejected before any effect",
				"entity_id", entityID,
				"reason", "no search session bound",
			)
		}
		s.metrics.IncrementDisposition(actionBlacklistAdd, outcomeRejected)
		return err
	}

	if relevanceScore == 0 {
		relevanceScore = target.Entity.Score
	}
	err = s.gateway.StarEntity(ctx, gateway.StarRequest{
		SearchID:       target.SearchID,
		EntityID:       entityID,
		EntityName:     target.Entity.Caption,
		EntityData:     target.EntityData,
		RelevanceScore: relevanceScore,
	})
	if err != nil {
		s.metrics.IncrementDisposition(actionBlacklistAdd, outcomeError)
		return err
	}

	if !sess.ConfirmBlacklist(target.Generation, entityID) {
		// The star is persisted server-side; only the local highlight is
		// owned by the newer search now.
		s.logger.DebugContext(ctx, "blacklist confirmed after a newer search",
			"entity_id", entityID,
			"search_id", target.SearchID,
		)
	}

	s.metrics.IncrementDisposition(actionBlacklistAdd, outcomeOK)
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventEntityBlacklisted,
		EntityID: entityID,
		SearchID: &target.SearchID,
	})
	return nil
}

// UnblacklistEntity removes the upstream star and clears local membership
// only after the server accepted.
func (s *Service) UnblacklistEntity(ctx context.Context, sess *session.Session, entityID id.EntityID) error {
	searchID, gen, err := sess.UnblacklistTarget(entityID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodePrecondition) {
			s.logger.WarnContext(ctx, "unblacklist rejected before any effect",
				"entity_id", entityID,
				"reason", "no search session bound",
			)
		}
		s.metrics.IncrementDisposition(actionBlacklistRemove, outcomeRejected)
		return err
	}

	if err := s.gateway.UnstarEntity(ctx, entityID, searchID); err != nil {
		s.metrics.IncrementDisposition(actionBlacklistRemove, outcomeError)
		return err
	}

	sess.ConfirmUnblacklist(gen, entityID)
	s.metrics.IncrementDisposition(actionBlacklistRemove, outcomeOK)
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventEntityUnblacklisted,
		EntityID: entityID,
		SearchID: &searchID,
	})
	return nil
}
