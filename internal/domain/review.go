package domain

import (
	"slices"
	"time"

	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
)

// ReviewStatus is the per-item state of the review workflow.
type ReviewStatus string

// Review workflow states. Pending is the only initial state. The three
// decision states are re-decidable: a later decision overwrites an earlier
// one, but nothing transitions back to pending.
const (
	ReviewStatusPending       ReviewStatus = "pending"
	ReviewStatusApproved      ReviewStatus = "approved"
	ReviewStatusRejected      ReviewStatus = "rejected"
	ReviewStatusNeedsMoreInfo ReviewStatus = "needs_more_info"
)

// validDecisions is the single source of truth for decision states.
var validDecisions = map[ReviewStatus]bool{
	ReviewStatusApproved:      true,
	ReviewStatusRejected:      true,
	ReviewStatusNeedsMoreInfo: true,
}

// IsDecision reports whether s is one of the three decision states.
func (s ReviewStatus) IsDecision() bool {
	return validDecisions[s]
}

// String returns the string representation of the status.
func (s ReviewStatus) String() string {
	return string(s)
}

// ParseReviewDecision constructs a decision state from external input.
//
// Errors: CodeInvalidInput when the value is empty, unknown, or "pending";
// there is no transition back to pending.
func ParseReviewDecision(s string) (ReviewStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision cannot be empty")
	}
	status := ReviewStatus(s)
	if status == ReviewStatusPending {
		return "", dErrors.New(dErrors.CodeInvalidInput, "items cannot be returned to pending")
	}
	if !status.IsDecision() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be approved, rejected, or needs_more_info")
	}
	return status, nil
}

// ReviewItem is one flagged entity in the review queue.
//
// Invariants:
//   - ID is unique within the queue (the queue enforces this)
//   - Reasons is a non-empty ordered set: re-flagging merges new reasons and
//     never discards or duplicates existing ones
//   - Status starts pending; decisions overwrite each other, latest wins,
//     and no transition leads back to pending
//   - ReviewedAt and ReviewedBy are set exactly when a decision is applied
//   - SearchID is the originating search-history id when one was bound at
//     flag time; nil items resolve a search id lazily at disposition time
type ReviewItem struct {
	ID         id.ReviewItemID `json:"id"`
	Entity     EntityRecord    `json:"entity"`
	Reasons    []string        `json:"reasons"`
	FlaggedAt  time.Time       `json:"flagged_at"`
	Status     ReviewStatus    `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy id.UserID       `json:"reviewed_by,omitempty"`
	SearchID   *id.SearchID    `json:"search_id,omitempty"`
}

// NewReviewItem flags an entity for review. Records without an entity id get
// a generated fallback key so they can still be queued.
func NewReviewItem(entity EntityRecord, reason string, searchID *id.SearchID, now time.Time) (*ReviewItem, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "flag reason is required")
	}
	if len(reason) > maxReasonLen {
		return nil, dErrors.New(dErrors.CodeValidation, "flag reason must be 1024 characters or less")
	}

	itemID := id.ReviewItemIDForEntity(entity.ID)
	if itemID.IsNil() {
		itemID = id.NewFallbackReviewItemID()
	}

	return &ReviewItem{
		ID:        itemID,
		Entity:    entity,
		Reasons:   []string{reason},
		FlaggedAt: now,
		Status:    ReviewStatusPending,
		SearchID:  searchID,
	}, nil
}

// AddReason merges another trigger reason into the item's reason set.
// Returns false when the reason was already present. Status, notes, and
// timestamps are untouched: re-flagging never resets review progress.
func (i *ReviewItem) AddReason(reason string) bool {
	if reason == "" || slices.Contains(i.Reasons, reason) {
		return false
	}
	i.Reasons = append(i.Reasons, reason)
	return true
}

// CanDecide checks whether the given decision may be applied.
// Any current status accepts any decision state; only the target is
// constrained. Use with ApplyDecision for the validate/mutate split.
func (i *ReviewItem) CanDecide(decision ReviewStatus) error {
	if decision == ReviewStatusPending {
		return dErrors.New(dErrors.CodeInvalidInput, "items cannot be returned to pending")
	}
	if !decision.IsDecision() {
		return dErrors.New(dErrors.CodeInvalidInput, "decision must be approved, rejected, or needs_more_info")
	}
	return nil
}

// ApplyDecision overwrites the item's status, notes, reviewer, and review
// time. Call CanDecide first to validate the transition.
func (i *ReviewItem) ApplyDecision(decision ReviewStatus, notes string, reviewedBy id.UserID, now time.Time) {
	i.Status = decision
	i.Notes = notes
	i.ReviewedBy = reviewedBy
	reviewedAt := now
	i.ReviewedAt = &reviewedAt
}

// Decide validates and applies a decision in one call.
// Prefer CanDecide + ApplyDecision when validation and mutation are split
// across a lock boundary.
func (i *ReviewItem) Decide(decision ReviewStatus, notes string, reviewedBy id.UserID, now time.Time) error {
	if err := i.CanDecide(decision); err != nil {
		return err
	}
	if len(notes) > maxReasonLen {
		return dErrors.New(dErrors.CodeValidation, "notes must be 1024 characters or less")
	}
	i.ApplyDecision(decision, notes, reviewedBy, now)
	return nil
}
