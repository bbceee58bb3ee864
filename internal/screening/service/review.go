package service

import (
	"context"
	"strings"

	"watchgate/internal/domain"
	"watchgate/internal/gateway"
	"watchgate/internal/screening/session"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/requestcontext"
)

// FlagForReview queues an entity from the current result set on an analyst's
// explicit request. Re-flagging merges the reason into the existing item.
func (s *Service) FlagForReview(ctx context.Context, sess *session.Session, entityID id.EntityID, reason string) (domain.ReviewItem, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ReviewItem{}, dErrors.New(dErrors.CodeValidation, "reason is required")
	}

	item, created, err := sess.FlagResult(entityID, reason, requestcontext.Now(ctx))
	if err != nil {
		return domain.ReviewItem{}, err
	}

	s.metrics.IncrementFlag(flagLabel(reason))
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventReviewFlagged,
		EntityID: item.Entity.ID,
		Reason:   reason,
		Details:  map[string]string{"source": "manual", "created": boolLabel(created)},
	})
	return item, nil
}

// ReviewItems lists the queue in flag order.
func (s *Service) ReviewItems(sess *session.Session) []domain.ReviewItem {
	return sess.ReviewItems()
}

// MakeReviewDecision records a decision on a queued item. The latest decision
// wins; the item stays queued until removed or promoted.
func (s *Service) MakeReviewDecision(ctx context.Context, sess *session.Session, itemID id.ReviewItemID, decision domain.ReviewStatus, notes string) (domain.ReviewItem, error) {
	item, err := sess.MakeReviewDecision(itemID, decision, notes, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return domain.ReviewItem{}, err
	}

	s.metrics.IncrementReviewDecision(string(decision))
	event := audit.Event{
		Type:     audit.EventReviewDecision,
		EntityID: item.Entity.ID,
		Decision: string(decision),
	}
	if notes != "" {
		event.Details = map[string]string{"notes": notes}
	}
	s.audit.Record(ctx, event)
	return item, nil
}

// RemoveFromReview deletes an item from the queue regardless of status.
func (s *Service) RemoveFromReview(ctx context.Context, sess *session.Session, itemID id.ReviewItemID) bool {
	item, ok := sess.ReviewItem(itemID)
	if !sess.RemoveFromReview(itemID) {
		return false
	}

	event := audit.Event{Type: audit.EventReviewRemoved}
	if ok {
		event.EntityID = item.Entity.ID
	}
	s.audit.Record(ctx, event)
	return true
}

// PromoteToWhitelist whitelists a review item's entity and dequeues it. Both
// mutations are local and happen under one mutex hold in the session.
func (s *Service) PromoteToWhitelist(ctx context.Context, sess *session.Session, itemID id.ReviewItemID, reason string) (domain.DispositionEntry, error) {
	entry, item, err := sess.PromoteToWhitelist(itemID, reason, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return domain.DispositionEntry{}, err
	}

	s.metrics.IncrementDisposition(actionWhitelistAdd, outcomeOK)
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventReviewPromoted,
		EntityID: item.Entity.ID,
		Decision: "whitelist",
		Reason:   reason,
	})
	return entry, nil
}

// PromoteToBlacklist stars a review item's entity upstream, then dequeues it
// and marks membership. The search id is the item's captured one when
// present, else the current binding; with neither the promotion is rejected
// before any state change or network call.
func (s *Service) PromoteToBlacklist(ctx context.Context, sess *session.Session, itemID id.ReviewItemID) (domain.ReviewItem, error) {
	item, ok := sess.ReviewItem(itemID)
	if !ok {
		return domain.ReviewItem{}, dErrors.New(dErrors.CodeNotFound, "review item not found")
	}

	target, err := sess.PromoteBlacklistTarget(itemID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodePrecondition) {
			s.logger.WarnContext(ctx, "promotion rejected before any effect",
				"item_id", itemID,
				"reason", "no search session bound",
			)
		}
		s.metrics.IncrementDisposition(actionBlacklistAdd, outcomeRejected)
		return domain.ReviewItem{}, err
	}

	err = s.gateway.StarEntity(ctx, gateway.StarRequest{
		SearchID:       target.SearchID,
		EntityID:       target.Entity.ID,
		EntityName:     target.Entity.Caption,
		EntityData:     target.EntityData,
		RelevanceScore: target.Entity.Score,
	})
	if err != nil {
		s.metrics.IncrementDisposition(actionBlacklistAdd, outcomeError)
		return domain.ReviewItem{}, err
	}

	sess.ConfirmPromoteBlacklist(target.Generation, itemID, target.Entity.ID)
	s.metrics.IncrementDisposition(actionBlacklistAdd, outcomeOK)
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventReviewPromoted,
		EntityID: target.Entity.ID,
		Decision: "blacklist",
		SearchID: &target.SearchID,
	})
	return item, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
