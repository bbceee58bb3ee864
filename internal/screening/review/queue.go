// Package review is the review workflow queue: one item per flagged entity,
// moving through pending → approved / rejected / needs_more_info.
package review

import (
	"slices"
	"time"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/sentinel"
)

// Queue holds one screening session's review items in flag order. Not safe
// for concurrent use on its own: the owning session's mutex serializes all
// access. Methods return item snapshots, never live references.
type Queue struct {
	items map[id.ReviewItemID]*domain.ReviewItem
	order []id.ReviewItemID
}

// NewQueue creates an empty review queue.
func NewQueue() *Queue {
	return &Queue{items: make(map[id.ReviewItemID]*domain.ReviewItem)}
}

// Flag queues an entity for review. Flagging an already-queued entity merges
// the reason into the item's reason set and returns created=false; status,
// notes, and timestamps are never reset by a re-flag.
func (q *Queue) Flag(entity domain.EntityRecord, reason string, searchID *id.SearchID, now time.Time) (domain.ReviewItem, bool, error) {
	itemID := id.ReviewItemIDForEntity(entity.ID)
	if !itemID.IsNil() {
		if existing, ok := q.items[itemID]; ok {
			existing.AddReason(reason)
			return *existing, false, nil
		}
	}

	item, err := domain.NewReviewItem(entity, reason, searchID, now)
	if err != nil {
		return domain.ReviewItem{}, false, err
	}
	q.items[item.ID] = item
	q.order = append(q.order, item.ID)
	return *item, true, nil
}

// MakeDecision applies a decision to a queued item. The latest decision wins:
// status, notes, reviewer, and review time are overwritten.
//
// Errors: CodeNotFound when the item is not queued; CodeInvalidInput when the
// decision is pending or unknown.
func (q *Queue) MakeDecision(itemID id.ReviewItemID, decision domain.ReviewStatus, notes string, actor id.UserID, now time.Time) (domain.ReviewItem, error) {
	item, ok := q.items[itemID]
	if !ok {
		return domain.ReviewItem{}, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "review item not found")
	}
	if err := item.Decide(decision, notes, actor, now); err != nil {
		return domain.ReviewItem{}, err
	}
	return *item, nil
}

// Remove deletes an item regardless of status. Returns false when the item
// was not queued.
func (q *Queue) Remove(itemID id.ReviewItemID) bool {
	if _, ok := q.items[itemID]; !ok {
		return false
	}
	delete(q.items, itemID)
	q.order = slices.DeleteFunc(q.order, func(queued id.ReviewItemID) bool {
		return queued == itemID
	})
	return true
}

// Get returns a snapshot of the item.
func (q *Queue) Get(itemID id.ReviewItemID) (domain.ReviewItem, bool) {
	item, ok := q.items[itemID]
	if !ok {
		return domain.ReviewItem{}, false
	}
	return *item, true
}

// List returns snapshots of all items in flag order.
func (q *Queue) List() []domain.ReviewItem {
	items := make([]domain.ReviewItem, 0, len(q.order))
	for _, itemID := range q.order {
		items = append(items, *q.items[itemID])
	}
	return items
}

// Len reports the number of queued items.
func (q *Queue) Len() int {
	return len(q.items)
}
