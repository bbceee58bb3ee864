package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
)

type DispositionEntrySuite struct {
	suite.Suite
}

func TestDispositionEntrySuite(t *testing.T) {
	suite.Run(t, new(DispositionEntrySuite))
}

// TestNewDispositionEntry verifies entry construction invariants.
func (s *DispositionEntrySuite) TestNewDispositionEntry() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	decidedBy := id.UserID(uuid.New())
	entity := EntityRecord{ID: id.EntityID("Q7747"), Caption: "Vladimir Petrov"}

	s.Run("valid entry", func() {
		entry, err := NewDispositionEntry(entity, "known customer", decidedBy, now)
		s.Require().NoError(err)
		s.Equal(entity.ID, entry.EntityID)
		s.Equal("known customer", entry.Reason)
		s.Equal(decidedBy, entry.DecidedBy)
		s.Equal(now, entry.DecidedAt)
	})

	s.Run("empty reason allowed", func() {
		entry, err := NewDispositionEntry(entity, "", decidedBy, now)
		s.Require().NoError(err)
		s.Empty(entry.Reason)
	})

	s.Run("entity without id rejected", func() {
		_, err := NewDispositionEntry(EntityRecord{Caption: "unnamed"}, "reason", decidedBy, now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("oversized reason rejected", func() {
		_, err := NewDispositionEntry(entity, strings.Repeat("r", 1025), decidedBy, now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
