// Package audit defines the append-only audit trail for screening activity.
// Events are emitted from domain logic, buffered by the worker, persisted by
// a store, and optionally fanned out to a sink. The trail is compliance
// evidence: every disposition decision an analyst makes lands here.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "watchgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and downstream routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// disposition changes, review outcomes. These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and
	// forensics: rejected tokens, rate limiting, admin access to the trail.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	// These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// EventType names an auditable action.
type EventType string

const (
	// Screening events
	EventSearchExecuted      EventType = "screening.search.executed"
	EventEntityWhitelisted   EventType = "screening.entity.whitelisted"
	EventEntityUnwhitelisted EventType = "screening.entity.unwhitelisted"
	EventEntityBlacklisted   EventType = "screening.entity.blacklisted"
	EventEntityUnblacklisted EventType = "screening.entity.unblacklisted"

	// Review workflow events
	EventReviewFlagged  EventType = "review.item.flagged"
	EventReviewDecision EventType = "review.decision.made"
	EventReviewRemoved  EventType = "review.item.removed"
	EventReviewPromoted EventType = "review.item.promoted"

	// Security events
	EventTokenRejected     EventType = "auth.token.rejected"
	EventRateLimitExceeded EventType = "ratelimit.exceeded"
	EventAuditQueried      EventType = "admin.audit.queried"
)

// eventCategories maps each event type to its category.
// Compliance: disposition and review actions, long retention required.
// Security: auth and access events, feed monitoring and alerting.
// Operations: routine activity, can be sampled.
var eventCategories = map[EventType]EventCategory{
	EventSearchExecuted: CategoryOperations,

	EventEntityWhitelisted:   CategoryCompliance,
	EventEntityUnwhitelisted: CategoryCompliance,
	EventEntityBlacklisted:   CategoryCompliance,
	EventEntityUnblacklisted: CategoryCompliance,
	EventReviewFlagged:       CategoryCompliance,
	EventReviewDecision:      CategoryCompliance,
	EventReviewRemoved:       CategoryCompliance,
	EventReviewPromoted:      CategoryCompliance,

	EventTokenRejected:     CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,
	EventAuditQueried:      CategorySecurity,
}

// Category returns the category for this event type.
// Unknown types default to CategoryOperations.
func (t EventType) Category() EventCategory {
	if cat, ok := eventCategories[t]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one audit record. Keep it transport-agnostic so stores and sinks
// can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`

	// ActorID is the analyst who performed the action; SessionID is their
	// screening session.
	ActorID   id.UserID    `json:"actor_id,omitempty"`
	SessionID id.SessionID `json:"session_id,omitempty"`

	// EntityID and SearchID locate the screening subject when the event
	// concerns one.
	EntityID id.EntityID  `json:"entity_id,omitempty"`
	SearchID *id.SearchID `json:"search_id,omitempty"`

	// Decision and Reason carry the outcome in the actor's terms
	// (e.g. decision "approved", reason "Sanctioned entity detected").
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`

	// Request correlation and client forensics.
	RequestID   string `json:"request_id,omitempty"`
	ClientIP    string `json:"client_ip,omitempty"`
	ClientAgent string `json:"client_agent,omitempty"`

	Details map[string]string `json:"details,omitempty"`
}

// Normalize fills derived fields: a fresh ID when unset, the category from
// the type, and the timestamp when zero.
func (e Event) Normalize(now time.Time) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Category == "" {
		e.Category = e.Type.Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}

// Store persists audit events. Append must be idempotent on event ID so a
// replayed event cannot double-count.
type Store interface {
	Append(ctx context.Context, event Event) error
	Query(ctx context.Context, q Query) ([]Event, error)
}

// Sink receives stored events for fan-out (e.g. a Kafka topic). Sinks are
// best-effort: the store remains the source of truth.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Query filters the audit trail. Zero values mean "any". Results are newest
// first.
type Query struct {
	Category EventCategory
	Type     EventType
	ActorID  id.UserID
	Since    time.Time
	Until    time.Time
	Limit    int
}

const (
	// DefaultQueryLimit applies when a query does not set a limit.
	DefaultQueryLimit = 100

	// MaxQueryLimit is the hard ceiling for one query.
	MaxQueryLimit = 1000
)

// Normalize clamps the limit into [1, MaxQueryLimit].
func (q Query) Normalize() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultQueryLimit
	}
	if q.Limit > MaxQueryLimit {
		q.Limit = MaxQueryLimit
	}
	return q
}
