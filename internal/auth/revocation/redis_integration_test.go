//go:build integration

package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"watchgate/internal/auth/revocation"
	"watchgate/pkg/platform/sentinel"
	"watchgate/pkg/testutil/containers"
)

type RedisTRLSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	trl   *revocation.RedisTRL
}

func TestRedisTRLSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisTRLSuite))
}

func (s *RedisTRLSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.trl = revocation.NewRedisTRL(s.redis.Client)
}

func (s *RedisTRLSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisTRLSuite) TestRevokeThenCheck() {
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := s.trl.IsTokenRevoked(ctx, jti)
	s.Require().NoError(err)
	s.False(revoked, "fresh jti must not be revoked")

	s.Require().NoError(s.trl.RevokeToken(ctx, jti, time.Hour))

	revoked, err = s.trl.IsTokenRevoked(ctx, jti)
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *RedisTRLSuite) TestEntryExpiresWithTTL() {
	ctx := context.Background()
	jti := uuid.NewString()

	s.Require().NoError(s.trl.RevokeToken(ctx, jti, 500*time.Millisecond))

	revoked, err := s.trl.IsTokenRevoked(ctx, jti)
	s.Require().NoError(err)
	s.True(revoked)

	s.Eventually(func() bool {
		revoked, err := s.trl.IsTokenRevoked(ctx, jti)
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond, "entry should disappear once the TTL lapses")
}

func (s *RedisTRLSuite) TestKeyUsesTRLPrefix() {
	ctx := context.Background()
	jti := uuid.NewString()

	s.Require().NoError(s.trl.RevokeToken(ctx, jti, time.Hour))

	exists, err := s.redis.Client.Exists(ctx, "trl:jti:"+jti).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists, "revocations must live under trl:jti:")
}

func (s *RedisTRLSuite) TestRejectsNonPositiveTTL() {
	err := s.trl.RevokeToken(context.Background(), uuid.NewString(), 0)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *RedisTRLSuite) TestEmptyJTINoOp() {
	ctx := context.Background()

	s.Require().NoError(s.trl.RevokeToken(ctx, "", time.Hour))

	revoked, err := s.trl.IsTokenRevoked(ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
