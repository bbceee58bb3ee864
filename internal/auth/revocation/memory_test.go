package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"watchgate/pkg/platform/sentinel"
)

type MemoryTRLSuite struct {
	suite.Suite
	now time.Time
	trl *MemoryTRL
	ctx context.Context
}

func (s *MemoryTRLSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.trl = NewMemoryTRL(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func TestMemoryTRLSuite(t *testing.T) {
	suite.Run(t, new(MemoryTRLSuite))
}

func (s *MemoryTRLSuite) TestRevokeAndCheck() {
	s.Run("unknown jti is not revoked", func() {
		revoked, err := s.trl.IsTokenRevoked(s.ctx, "jti-unknown")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("revoked jti is reported until its ttl passes", func() {
		s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti-1", time.Hour))

		revoked, err := s.trl.IsTokenRevoked(s.ctx, "jti-1")
		s.Require().NoError(err)
		s.True(revoked)

		s.now = s.now.Add(2 * time.Hour)

		revoked, err = s.trl.IsTokenRevoked(s.ctx, "jti-1")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("empty jti is a no-op on both paths", func() {
		s.Require().NoError(s.trl.RevokeToken(s.ctx, "", time.Hour))

		revoked, err := s.trl.IsTokenRevoked(s.ctx, "")
		s.Require().NoError(err)
		s.False(revoked)
	})

	s.Run("non-positive ttl is rejected", func() {
		err := s.trl.RevokeToken(s.ctx, "jti-2", 0)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("re-revoking extends the expiry", func() {
		s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti-3", time.Minute))
		s.now = s.now.Add(30 * time.Second)
		s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti-3", time.Hour))
		s.now = s.now.Add(10 * time.Minute)

		revoked, err := s.trl.IsTokenRevoked(s.ctx, "jti-3")
		s.Require().NoError(err)
		s.True(revoked)
	})
}
