package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
)

type ManagerSuite struct {
	suite.Suite
	manager *Manager
}

func (s *ManagerSuite) SetupTest() {
	s.manager = NewManager(time.Minute, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

// TestGetOrCreate verifies session identity across accesses.
func (s *ManagerSuite) TestGetOrCreate() {
	sessionID := id.SessionID(uuid.New())
	userID := id.UserID(uuid.New())

	s.Run("first access creates the session", func() {
		sess := s.manager.Get(sessionID, userID)
		s.Require().NotNil(sess)
		s.Equal(sessionID, sess.ID())
		s.Equal(userID, sess.UserID())
		s.Equal(1, s.manager.Len())
	})

	s.Run("repeat access returns the same session", func() {
		first := s.manager.Get(sessionID, userID)
		again := s.manager.Get(sessionID, userID)
		s.Same(first, again)
		s.Equal(1, s.manager.Len())
	})

	s.Run("different session ids are isolated", func() {
		other := s.manager.Get(id.SessionID(uuid.New()), userID)
		s.NotSame(s.manager.Get(sessionID, userID), other)
		s.Equal(2, s.manager.Len())
	})
}

// TestEviction verifies idle expiry cancels in-flight reconciles.
func (s *ManagerSuite) TestEviction() {
	s.Run("idle sessions expire and get recreated", func() {
		manager := NewManager(30*time.Millisecond, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		sessionID := id.SessionID(uuid.New())
		userID := id.UserID(uuid.New())

		first := manager.Get(sessionID, userID)
		_, reconcileCtx := first.BeginSearch(context.Background(), "query", []domain.EntityRecord{})

		s.Eventually(func() bool {
			return manager.Len() == 0
		}, time.Second, 10*time.Millisecond)
		s.Require().Error(reconcileCtx.Err(), "eviction must cancel the reconcile")

		again := manager.Get(sessionID, userID)
		s.NotSame(first, again)
	})

	s.Run("access slides the expiry", func() {
		manager := NewManager(60*time.Millisecond, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		sessionID := id.SessionID(uuid.New())
		userID := id.UserID(uuid.New())

		first := manager.Get(sessionID, userID)
		for range 4 {
			time.Sleep(30 * time.Millisecond)
			s.Same(first, manager.Get(sessionID, userID))
		}
	})
}

// TestClose verifies shutdown cancels every session.
func (s *ManagerSuite) TestClose() {
	sess := s.manager.Get(id.SessionID(uuid.New()), id.UserID(uuid.New()))
	_, reconcileCtx := sess.BeginSearch(context.Background(), "query", []domain.EntityRecord{})

	s.manager.Close()
	s.Equal(0, s.manager.Len())
	s.Require().Error(reconcileCtx.Err())
}
