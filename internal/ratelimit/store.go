package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Clock returns the current time. Settable in tests.
type Clock func() time.Time

// MemoryStore implements Store with per-key sliding windows. The sliding
// window counts individual request timestamps, so a burst straddling a
// minute boundary cannot double its budget.
//
// Single-process only: with several replicas each enforces its own window.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	clock   Clock
}

type window struct {
	timestamps []time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock replaces the time source.
func WithClock(clock Clock) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// NewMemoryStore creates an empty in-memory window store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request for the key if the window has room.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, length time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	w := s.windows[key]
	if w == nil {
		w = &window{}
		s.windows[key] = w
	}
	w.expire(now, length)

	if len(w.timestamps) >= limit {
		resetAt := w.timestamps[0].Add(length)
		return Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}

	w.timestamps = append(w.timestamps, now)
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(w.timestamps),
		ResetAt:   w.timestamps[0].Add(length),
	}, nil
}

// Reset clears the window for a key.
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

// expire drops timestamps that have slid out of the window.
func (w *window) expire(now time.Time, length time.Duration) {
	cutoff := now.Add(-length)
	i := 0
	for ; i < len(w.timestamps); i++ {
		if w.timestamps[i].After(cutoff) {
			break
		}
	}
	w.timestamps = w.timestamps[i:]
}

// retryAfter rounds the wait up to whole seconds; clients sleeping exactly
// this long will find room in the window.
func retryAfter(now, resetAt time.Time) int {
	seconds := math.Ceil(resetAt.Sub(now).Seconds())
	if seconds < 1 {
		return 1
	}
	return int(seconds)
}
