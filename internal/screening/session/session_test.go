package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
)

type SessionSuite struct {
	suite.Suite
	sess  *Session
	ctx   context.Context
	now   time.Time
	actor id.UserID
}

func (s *SessionSuite) SetupTest() {
	s.actor = id.UserID(uuid.New())
	s.sess = New(id.SessionID(uuid.New()), s.actor)
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func entity(entityID string, topics ...string) domain.EntityRecord {
	return domain.EntityRecord{ID: id.EntityID(entityID), Caption: "Entity " + entityID, Topics: topics, Score: 0.9}
}

func (s *SessionSuite) beginSearch(query string, entities ...domain.EntityRecord) (uint64, context.Context) {
	return s.sess.BeginSearch(s.ctx, query, entities)
}

// TestSearchLifecycle verifies generation bumps and reconcile cancellation.
func (s *SessionSuite) TestSearchLifecycle() {
	s.Run("each search bumps the generation", func() {
		gen1, _ := s.beginSearch("first", entity("Q1"))
		gen2, _ := s.beginSearch("second", entity("Q2"))
		s.Equal(gen1+1, gen2)
		s.Equal(gen2, s.sess.Generation())
	})

	s.Run("a new search cancels the previous reconcile context", func() {
		_, ctx1 := s.beginSearch("first", entity("Q1"))
		_, ctx2 := s.beginSearch("second", entity("Q2"))

		s.Require().Error(ctx1.Err())
		s.Require().NoError(ctx2.Err())
	})

	s.Run("close cancels the in-flight reconcile", func() {
		_, ctx := s.beginSearch("first", entity("Q1"))
		s.sess.Close()
		s.Require().Error(ctx.Err())
	})

	s.Run("reconcile context survives request cancellation", func() {
		reqCtx, cancel := context.WithCancel(context.Background())
		_, reconcileCtx := s.sess.BeginSearch(reqCtx, "first", []domain.EntityRecord{entity("Q1")})
		cancel()
		s.Require().NoError(reconcileCtx.Err())
	})

	s.Run("binding survives a new search until overwritten", func() {
		gen, _ := s.beginSearch("first", entity("Q1"))
		s.True(s.sess.BindSearch(gen, id.SearchID(41)))

		s.beginSearch("second", entity("Q2"))
		bound, ok := s.sess.CurrentSearchID()
		s.Require().True(ok)
		s.Equal(id.SearchID(41), bound)
	})
}

// TestBinding verifies generation-guarded binding and membership refresh.
func (s *SessionSuite) TestBinding() {
	s.Run("bind with current generation", func() {
		gen, _ := s.beginSearch("Trump", entity("Q1"))
		s.True(s.sess.BindSearch(gen, id.SearchID(42)))

		bound, ok := s.sess.CurrentSearchID()
		s.Require().True(ok)
		s.Equal(id.SearchID(42), bound)
	})

	s.Run("stale bind discarded", func() {
		gen, _ := s.beginSearch("first", entity("Q1"))
		s.beginSearch("second", entity("Q2"))

		s.False(s.sess.BindSearch(gen, id.SearchID(99)))
		bound, _ := s.sess.CurrentSearchID()
		s.NotEqual(id.SearchID(99), bound)
	})

	s.Run("stale membership refresh discarded", func() {
		gen, _ := s.beginSearch("first", entity("Q1"))
		s.beginSearch("second", entity("Q2"))

		s.False(s.sess.ReplaceBlacklistIf(gen, []id.EntityID{"Q1"}))
		s.Empty(s.sess.BlacklistedIDs())
	})

	s.Run("current membership refresh applied", func() {
		gen, _ := s.beginSearch("third", entity("Q3"))
		s.True(s.sess.ReplaceBlacklistIf(gen, []id.EntityID{"Q3"}))
		s.Equal([]id.EntityID{"Q3"}, s.sess.BlacklistedIDs())
	})
}

// TestBlacklistTarget verifies the pessimistic star snapshot and confirm.
func (s *SessionSuite) TestBlacklistTarget() {
	s.Run("unbound session rejects blacklisting", func() {
		s.beginSearch("query", entity("Q1"))

		_, err := s.sess.BlacklistTarget(id.EntityID("Q1"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	})

	s.Run("unknown entity rejected", func() {
		gen, _ := s.beginSearch("query", entity("Q1"))
		s.sess.BindSearch(gen, id.SearchID(42))

		_, err := s.sess.BlacklistTarget(id.EntityID("missing"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("snapshot carries entity, search id, and generation", func() {
		gen, _ := s.beginSearch("query", entity("Q1"))
		s.sess.BindSearch(gen, id.SearchID(42))

		target, err := s.sess.BlacklistTarget(id.EntityID("Q1"))
		s.Require().NoError(err)
		s.Equal(id.EntityID("Q1"), target.Entity.ID)
		s.Equal(id.SearchID(42), target.SearchID)
		s.Equal(gen, target.Generation)
		s.JSONEq(`{"id":"Q1","caption":"Entity Q1","schema":"","score":0.9}`, string(target.EntityData))
	})

	s.Run("confirm marks membership", func() {
		gen, _ := s.beginSearch("query", entity("Q1"))
		s.sess.BindSearch(gen, id.SearchID(42))

		s.True(s.sess.ConfirmBlacklist(gen, id.EntityID("Q1")))
		s.Equal([]id.EntityID{"Q1"}, s.sess.BlacklistedIDs())
	})

	s.Run("stale confirm discarded", func() {
		gen, _ := s.beginSearch("query", entity("Q1"))
		s.sess.BindSearch(gen, id.SearchID(42))
		s.beginSearch("newer", entity("Q2"))

		s.False(s.sess.ConfirmBlacklist(gen, id.EntityID("Q1")))
		s.Empty(s.sess.BlacklistedIDs())
	})
}

// TestUnblacklist verifies the unstar snapshot path.
func (s *SessionSuite) TestUnblacklist() {
	s.Run("unbound session rejects unblacklisting", func() {
		_, _, err := s.sess.UnblacklistTarget(id.EntityID("Q1"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	})

	s.Run("membership is not required locally", func() {
		gen, _ := s.beginSearch("query", entity("Q1"))
		s.sess.BindSearch(gen, id.SearchID(42))

		searchID, snapGen, err := s.sess.UnblacklistTarget(id.EntityID("Q1"))
		s.Require().NoError(err)
		s.Equal(id.SearchID(42), searchID)
		s.Equal(gen, snapGen)
	})

	s.Run("confirm clears membership", func() {
		gen, _ := s.beginSearch("query", entity("Q1"))
		s.sess.BindSearch(gen, id.SearchID(42))
		s.sess.ConfirmBlacklist(gen, id.EntityID("Q1"))

		s.True(s.sess.ConfirmUnblacklist(gen, id.EntityID("Q1")))
		s.Empty(s.sess.BlacklistedIDs())
	})
}

// TestFlagging verifies search-id capture rules for the two flag paths.
func (s *SessionSuite) TestFlagging() {
	s.Run("auto-flag captures no search id", func() {
		s.beginSearch("query", entity("Q1", "sanction"))

		item, created, err := s.sess.FlagEntity(entity("Q1", "sanction"), "Sanctioned entity detected", s.now)
		s.Require().NoError(err)
		s.True(created)
		s.Nil(item.SearchID)
	})

	s.Run("manual flag captures the current binding", func() {
		gen, _ := s.beginSearch("query", entity("Q2"))
		s.sess.BindSearch(gen, id.SearchID(42))

		item, created, err := s.sess.FlagResult(id.EntityID("Q2"), "analyst concern", s.now)
		s.Require().NoError(err)
		s.True(created)
		s.Require().NotNil(item.SearchID)
		s.Equal(id.SearchID(42), *item.SearchID)
	})

	s.Run("manual flag of unknown entity rejected", func() {
		s.beginSearch("query", entity("Q3"))

		_, _, err := s.sess.FlagResult(id.EntityID("missing"), "reason", s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestPromotions verifies the composite review-to-disposition operations.
func (s *SessionSuite) TestPromotions() {
	s.Run("whitelist promotion is atomic", func() {
		s.beginSearch("query", entity("Q1"))
		item, _, err := s.sess.FlagResult(id.EntityID("Q1"), "Sanctioned entity detected", s.now)
		s.Require().NoError(err)

		entry, promoted, err := s.sess.PromoteToWhitelist(item.ID, "false positive", s.actor, s.now)
		s.Require().NoError(err)
		s.Equal(id.EntityID("Q1"), entry.EntityID)
		s.Equal(item.ID, promoted.ID)

		_, stillQueued := s.sess.ReviewItem(item.ID)
		s.False(stillQueued)
		views := s.sess.ResultViews(false)
		s.Require().Len(views, 1)
		s.True(views[0].Whitelisted)
	})

	s.Run("whitelist promotion of unknown item rejected", func() {
		_, _, err := s.sess.PromoteToWhitelist(id.ReviewItemID("missing"), "", s.actor, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("blacklist promotion prefers the item's captured search id", func() {
		gen, _ := s.beginSearch("query", entity("Q2"))
		s.sess.BindSearch(gen, id.SearchID(42))
		item, _, err := s.sess.FlagResult(id.EntityID("Q2"), "reason", s.now)
		s.Require().NoError(err)

		gen2, _ := s.beginSearch("newer", entity("Q3"))
		s.sess.BindSearch(gen2, id.SearchID(77))

		target, err := s.sess.PromoteBlacklistTarget(item.ID)
		s.Require().NoError(err)
		s.Equal(id.SearchID(42), target.SearchID)
	})

	s.Run("blacklist promotion falls back to the current binding", func() {
		gen, _ := s.beginSearch("query", entity("Q4", "sanction"))
		item, _, err := s.sess.FlagEntity(entity("Q4", "sanction"), "Sanctioned entity detected", s.now)
		s.Require().NoError(err)
		s.Nil(item.SearchID)

		s.sess.BindSearch(gen, id.SearchID(55))
		target, err := s.sess.PromoteBlacklistTarget(item.ID)
		s.Require().NoError(err)
		s.Equal(id.SearchID(55), target.SearchID)
	})

	s.Run("blacklist promotion with no search id anywhere rejected", func() {
		fresh := New(id.SessionID(uuid.New()), s.actor)
		fresh.BeginSearch(s.ctx, "query", []domain.EntityRecord{entity("Q5")})
		item, _, err := fresh.FlagEntity(entity("Q5"), "reason", s.now)
		s.Require().NoError(err)

		_, err = fresh.PromoteBlacklistTarget(item.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	})

	s.Run("confirmed blacklist promotion dequeues and marks membership", func() {
		gen, _ := s.beginSearch("query", entity("Q6"))
		s.sess.BindSearch(gen, id.SearchID(42))
		item, _, err := s.sess.FlagResult(id.EntityID("Q6"), "reason", s.now)
		s.Require().NoError(err)

		s.True(s.sess.ConfirmPromoteBlacklist(gen, item.ID, id.EntityID("Q6")))
		_, stillQueued := s.sess.ReviewItem(item.ID)
		s.False(stillQueued)
		s.Contains(s.sess.BlacklistedIDs(), id.EntityID("Q6"))
	})

	s.Run("stale confirm still dequeues but skips membership", func() {
		gen, _ := s.beginSearch("query", entity("Q7"))
		s.sess.BindSearch(gen, id.SearchID(42))
		item, _, err := s.sess.FlagResult(id.EntityID("Q7"), "reason", s.now)
		s.Require().NoError(err)

		s.beginSearch("newer", entity("Q8"))

		s.False(s.sess.ConfirmPromoteBlacklist(gen, item.ID, id.EntityID("Q7")))
		_, stillQueued := s.sess.ReviewItem(item.ID)
		s.False(stillQueued)
		s.NotContains(s.sess.BlacklistedIDs(), id.EntityID("Q7"))
	})
}

// TestResultViews verifies disposition badges on the result listing.
func (s *SessionSuite) TestResultViews() {
	gen, _ := s.beginSearch("query", entity("Q1"), entity("Q2", "sanction"), entity("Q3"))
	s.sess.BindSearch(gen, id.SearchID(42))

	_, _, err := s.sess.AddToWhitelist(id.EntityID("Q1"), "known", s.actor, s.now)
	s.Require().NoError(err)
	_, _, err = s.sess.FlagResult(id.EntityID("Q2"), "Sanctioned entity detected", s.now)
	s.Require().NoError(err)
	s.sess.ConfirmBlacklist(gen, id.EntityID("Q3"))

	s.Run("badges reflect dispositions", func() {
		views := s.sess.ResultViews(false)
		s.Require().Len(views, 3)
		s.True(views[0].Whitelisted)
		s.True(views[1].InReview)
		s.True(views[2].Blacklisted)
	})

	s.Run("hide whitelisted drops rows", func() {
		views := s.sess.ResultViews(true)
		s.Require().Len(views, 2)
		s.Equal(id.EntityID("Q2"), views[0].Entity.ID)
		s.Equal(id.EntityID("Q3"), views[1].Entity.ID)
	})

	s.Run("summary counts dispositions", func() {
		summary := s.sess.Summary()
		s.Equal("query", summary.LastQuery)
		s.Require().NotNil(summary.CurrentSearchID)
		s.Equal(id.SearchID(42), *summary.CurrentSearchID)
		s.Equal(3, summary.ResultCount)
		s.Equal(1, summary.WhitelistCount)
		s.Equal(1, summary.BlacklistCount)
		s.Equal(1, summary.ReviewCount)
		s.Equal(1, summary.PendingReviews)
	})
}

// TestWhitelistFromResults verifies result-scoped whitelist operations.
func (s *SessionSuite) TestWhitelistFromResults() {
	s.Run("whitelisting requires the entity in current results", func() {
		s.beginSearch("query", entity("Q1"))

		_, _, err := s.sess.AddToWhitelist(id.EntityID("missing"), "", s.actor, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("whitelist add and remove", func() {
		s.beginSearch("query", entity("Q1"))

		entry, created, err := s.sess.AddToWhitelist(id.EntityID("Q1"), "known customer", s.actor, s.now)
		s.Require().NoError(err)
		s.True(created)
		s.Equal("known customer", entry.Reason)

		s.True(s.sess.RemoveFromWhitelist(id.EntityID("Q1")))
		s.False(s.sess.RemoveFromWhitelist(id.EntityID("Q1")))
	})
}
