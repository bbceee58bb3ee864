package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 5
	testWindow = time.Minute
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	now   time.Time
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) allowN(key string, n int) Result {
	var result Result
	var err error
	for range n {
		result, err = s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}
	return result
}

func (s *MemoryStoreSuite) TestAllow() {
	s.Run("first request is allowed with full window state", func() {
		result := s.allowN("user:first", 1)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("requests up to the limit are allowed", func() {
		result := s.allowN("user:full", testLimit)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over the limit is denied with retry hint", func() {
		s.allowN("user:over", testLimit)
		s.now = s.now.Add(10 * time.Second)

		result, err := s.store.Allow(s.ctx, "user:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(50, result.RetryAfter, "the oldest request expires in 50s")
	})

	s.Run("window slides rather than resets", func() {
		// Two requests 30s apart, then fill the window. After the first
		// request expires there is room for exactly one more.
		s.allowN("user:slide", 1)
		s.now = s.now.Add(30 * time.Second)
		s.allowN("user:slide", testLimit-1)

		s.now = s.now.Add(31 * time.Second)
		result := s.allowN("user:slide", 1)
		s.True(result.Allowed)

		result, err := s.store.Allow(s.ctx, "user:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed, "the second batch still occupies the window")
	})

	s.Run("keys are independent", func() {
		s.allowN("user:a", testLimit)
		result := s.allowN("user:b", 1)
		s.True(result.Allowed)
	})

	s.Run("reset clears the window", func() {
		s.allowN("user:reset", testLimit)
		s.store.Reset("user:reset")
		result := s.allowN("user:reset", 1)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})
}
