package domain

import (
	"time"

	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
)

// maxReasonLen bounds free-text rationale fields.
const maxReasonLen = 1024

// DispositionEntry records a whitelist or blacklist decision for one entity.
//
// Invariants:
//   - EntityID is non-nil and matches Entity.ID
//   - Entity is a snapshot taken at decision time, never re-fetched
//   - an entity id appears at most once per collection; re-adding is handled
//     by the owning store (whitelist: no-op, blacklist: overwrite)
type DispositionEntry struct {
	EntityID  id.EntityID  `json:"entity_id"`
	Entity    EntityRecord `json:"entity"`
	Reason    string       `json:"reason,omitempty"`
	DecidedBy id.UserID    `json:"decided_by"`
	DecidedAt time.Time    `json:"decided_at"`
}

// NewDispositionEntry validates and constructs a disposition entry.
func NewDispositionEntry(entity EntityRecord, reason string, decidedBy id.UserID, now time.Time) (DispositionEntry, error) {
	if entity.ID.IsNil() {
		return DispositionEntry{}, dErrors.New(dErrors.CodeInvariantViolation, "disposition requires an entity id")
	}
	if len(reason) > maxReasonLen {
		return DispositionEntry{}, dErrors.New(dErrors.CodeValidation, "reason must be 1024 characters or less")
	}
	return DispositionEntry{
		EntityID:  entity.ID,
		Entity:    entity,
		Reason:    reason,
		DecidedBy: decidedBy,
		DecidedAt: now,
	}, nil
}
