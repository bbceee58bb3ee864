// Package ratelimit protects the upstream search service from bursty
// analysts: a per-user sliding window enforced on the search route.
package ratelimit

import (
	"context"
	"time"

	"watchgate/pkg/platform/audit"
)

// Result is the outcome of a window check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, only set when not allowed
}

// Store tracks request counts per key over a sliding window.
type Store interface {
	// Allow records one request for the key if the window has room and
	// reports the window state either way.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// AuditRecorder receives throttling events for the security audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}
