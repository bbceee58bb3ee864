// Package memory provides an in-process audit store for tests and
// single-node deployments where durability is not required.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	audit "watchgate/pkg/platform/audit"
)

// DefaultCapacity bounds the trail when the caller passes zero.
const DefaultCapacity = 10000

// InMemoryStore keeps the audit trail in memory, oldest events dropping off
// once capacity is reached. Events are held in arrival order; Query walks
// newest first.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	seen     map[uuid.UUID]struct{}
	capacity int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryStore{
		seen:     make(map[uuid.UUID]struct{}),
		capacity: capacity,
	}
}

// Append stores the event. Replays of an already-stored event ID are no-ops.
func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[event.ID]; dup {
		return nil
	}
	if len(s.events) >= s.capacity {
		delete(s.seen, s.events[0].ID)
		s.events = append(s.events[:0], s.events[1:]...)
	}
	s.events = append(s.events, event)
	s.seen[event.ID] = struct{}{}
	return nil
}

// Query returns matching events, newest first, up to the query limit.
func (s *InMemoryStore) Query(_ context.Context, q audit.Query) ([]audit.Event, error) {
	q = q.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Event, 0, q.Limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < q.Limit; i-- {
		if matches(s.events[i], q) {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Len reports the number of stored events.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Clear empties the trail. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.seen = make(map[uuid.UUID]struct{})
}

func matches(e audit.Event, q audit.Query) bool {
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	if q.Type != "" && e.Type != q.Type {
		return false
	}
	if !q.ActorID.IsNil() && e.ActorID != q.ActorID {
		return false
	}
	if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && e.Timestamp.After(q.Until) {
		return false
	}
	return true
}
