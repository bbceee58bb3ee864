package audit_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	audit "watchgate/pkg/platform/audit"
)

func TestEventTypeCategory(t *testing.T) {
	tests := []struct {
		name      string
		eventType audit.EventType
		want      audit.EventCategory
	}{
		{"search execution is operations", audit.EventSearchExecuted, audit.CategoryOperations},
		{"whitelisting is compliance", audit.EventEntityWhitelisted, audit.CategoryCompliance},
		{"blacklisting is compliance", audit.EventEntityBlacklisted, audit.CategoryCompliance},
		{"review decision is compliance", audit.EventReviewDecision, audit.CategoryCompliance},
		{"token rejection is security", audit.EventTokenRejected, audit.CategorySecurity},
		{"audit access is security", audit.EventAuditQueried, audit.CategorySecurity},
		{"unknown type defaults to operations", audit.EventType("something.new"), audit.CategoryOperations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.Category())
		})
	}
}

func TestEventNormalize(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fills id, category, and timestamp", func(t *testing.T) {
		event := audit.Event{Type: audit.EventEntityWhitelisted}.Normalize(now)

		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, audit.CategoryCompliance, event.Category)
		assert.Equal(t, now, event.Timestamp)
	})

	t.Run("preserves values already set", func(t *testing.T) {
		eventID := uuid.New()
		stamped := now.Add(-time.Hour)

		event := audit.Event{
			ID:        eventID,
			Category:  audit.CategorySecurity,
			Type:      audit.EventSearchExecuted,
			Timestamp: stamped,
		}.Normalize(now)

		assert.Equal(t, eventID, event.ID)
		assert.Equal(t, audit.CategorySecurity, event.Category)
		assert.Equal(t, stamped, event.Timestamp)
	})
}

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero limit gets the default", 0, audit.DefaultQueryLimit},
		{"negative limit gets the default", -5, audit.DefaultQueryLimit},
		{"explicit limit is kept", 25, 25},
		{"oversized limit is clamped", audit.MaxQueryLimit + 1, audit.MaxQueryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := audit.Query{Limit: tt.limit}.Normalize()
			assert.Equal(t, tt.want, q.Limit)
		})
	}
}
