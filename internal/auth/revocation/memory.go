package revocation

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time.Now for deterministic expiry tests.
type Clock func() time.Time

// MemoryTRL is an in-process token revocation list for development and tests.
// It never sees revocations written by an external identity provider, so it
// must not be used when DEV_MODE is off.
type MemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> expiry
	clock   Clock
}

// MemoryTRLOption configures a MemoryTRL instance.
type MemoryTRLOption func(*MemoryTRL)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryTRLOption {
	return func(trl *MemoryTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

// NewMemoryTRL constructs an in-memory token revocation list.
func NewMemoryTRL(opts ...MemoryTRLOption) *MemoryTRL {
	trl := &MemoryTRL{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// RevokeToken adds a token to the revocation list with TTL.
func (t *MemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.clock().Add(ttl)
	return nil
}

// IsTokenRevoked checks if a token is in the revocation list. Expired entries
// are dropped lazily on lookup.
func (t *MemoryTRL) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	t.mu.RLock()
	expiresAt, ok := t.revoked[jti]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if t.clock().After(expiresAt) {
		t.mu.Lock()
		// Re-check under the write lock; a concurrent RevokeToken may have
		// refreshed the entry.
		if current, ok := t.revoked[jti]; ok && t.clock().After(current) {
			delete(t.revoked, jti)
		}
		t.mu.Unlock()
		return false, nil
	}
	return true, nil
}
