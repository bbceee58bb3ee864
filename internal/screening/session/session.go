// Package session owns per-analyst screening state: the last result set,
// the search binding, the disposition store, and the review queue. One
// mutex per session serializes every mutation; collaborator calls never
// happen while it is held. Callers snapshot state under the lock, talk to
// the search service, then confirm with a generation check so a response
// that raced a newer search cannot clobber newer state.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"watchgate/internal/domain"
	"watchgate/internal/screening/disposition"
	"watchgate/internal/screening/review"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
)

// Session is one analyst's screening workspace, keyed by the JWT session id.
// All exported methods are safe for concurrent use.
type Session struct {
	sessionID id.SessionID
	userID    id.UserID

	mu           sync.Mutex
	dispositions *disposition.Store
	reviews      *review.Queue

	// Search binding. CurrentSearchID stays nil until the reconciler matches
	// a history row; a new search bumps generation but leaves the old binding
	// in place until overwritten.
	currentSearchID *id.SearchID
	lastQuery       string
	generation      uint64

	results     []domain.EntityRecord
	resultIndex map[id.EntityID]int

	cancelReconcile context.CancelFunc
}

// New creates an empty session for the given analyst.
func New(sessionID id.SessionID, userID id.UserID) *Session {
	return &Session{
		sessionID:    sessionID,
		userID:       userID,
		dispositions: disposition.NewStore(),
		reviews:      review.NewQueue(),
		resultIndex:  make(map[id.EntityID]int),
	}
}

// ID returns the session id.
func (s *Session) ID() id.SessionID { return s.sessionID }

// UserID returns the owning analyst.
func (s *Session) UserID() id.UserID { return s.userID }

// BeginSearch installs a fresh result set, bumps the generation, and cancels
// any reconcile still running for the previous search. The returned context
// carries the caller's values but not its cancellation, so the reconciler
// outlives the HTTP request that triggered it and dies only when a newer
// search supersedes it or the session closes.
func (s *Session) BeginSearch(ctx context.Context, query string, results []domain.EntityRecord) (uint64, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelReconcile != nil {
		s.cancelReconcile()
	}
	reconcileCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelReconcile = cancel

	s.generation++
	s.lastQuery = query
	s.results = results
	s.resultIndex = make(map[id.EntityID]int, len(results))
	for i, record := range results {
		s.resultIndex[record.ID] = i
	}
	return s.generation, reconcileCtx
}

// BindSearch records the reconciled history id, unless a newer search has
// started since the triggering one. Returns false when the bind was stale
// and discarded.
func (s *Session) BindSearch(gen uint64, searchID id.SearchID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.currentSearchID = &searchID
	return true
}

// ReplaceBlacklistIf swaps the blacklist membership set, unless the
// generation moved on.
func (s *Session) ReplaceBlacklistIf(gen uint64, ids []id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.dispositions.ReplaceBlacklist(ids)
	return true
}

// Generation returns the current search generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// CurrentSearchID returns the bound history id, if any.
func (s *Session) CurrentSearchID() (id.SearchID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentSearchID == nil {
		return 0, false
	}
	return *s.currentSearchID, true
}

// Close cancels any in-flight reconcile. The manager calls this on eviction.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelReconcile != nil {
		s.cancelReconcile()
		s.cancelReconcile = nil
	}
}

// ResultView is one row of the result listing with its disposition badges.
type ResultView struct {
	Entity      domain.EntityRecord
	Whitelisted bool
	Blacklisted bool
	InReview    bool
}

// ResultViews returns the last result set annotated with disposition state,
// optionally hiding whitelisted entities.
func (s *Session) ResultViews(hideWhitelisted bool) []ResultView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]ResultView, 0, len(s.results))
	for _, record := range s.results {
		whitelisted := s.dispositions.IsWhitelisted(record.ID)
		if hideWhitelisted && whitelisted {
			continue
		}
		_, inReview := s.reviews.Get(id.ReviewItemIDForEntity(record.ID))
		views = append(views, ResultView{
			Entity:      record,
			Whitelisted: whitelisted,
			Blacklisted: s.dispositions.IsBlacklisted(record.ID),
			InReview:    inReview,
		})
	}
	return views
}

// Result returns the entity snapshot from the last result set.
func (s *Session) Result(entityID id.EntityID) (domain.EntityRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked(entityID)
}

func (s *Session) resultLocked(entityID id.EntityID) (domain.EntityRecord, bool) {
	i, ok := s.resultIndex[entityID]
	if !ok {
		return domain.EntityRecord{}, false
	}
	return s.results[i], true
}

// AddToWhitelist whitelists an entity from the current result set.
//
// Errors: CodeNotFound when the entity is not in the last result set.
func (s *Session) AddToWhitelist(entityID id.EntityID, reason string, actor id.UserID, now time.Time) (domain.DispositionEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.resultLocked(entityID)
	if !ok {
		return domain.DispositionEntry{}, false, dErrors.New(dErrors.CodeNotFound, "entity not in current results")
	}
	return s.dispositions.AddToWhitelist(record, reason, actor, now)
}

// RemoveFromWhitelist drops an entity's whitelist entry.
func (s *Session) RemoveFromWhitelist(entityID id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispositions.RemoveFromWhitelist(entityID)
}

// WhitelistEntries lists whitelist entries in decision order.
func (s *Session) WhitelistEntries() []domain.DispositionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispositions.WhitelistEntries()
}

// BlacklistedIDs lists server-confirmed blacklist membership.
func (s *Session) BlacklistedIDs() []id.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispositions.BlacklistedIDs()
}

// StarTarget is everything a star call needs, snapshotted under one lock
// hold so the entity and the search id belong to the same generation.
type StarTarget struct {
	Entity     domain.EntityRecord
	EntityData json.RawMessage
	SearchID   id.SearchID
	Generation uint64
}

// BlacklistTarget snapshots the inputs for blacklisting an entity.
//
// Errors: CodePrecondition when no search is bound (blacklisting is disabled
// until the reconciler attaches a history id); CodeNotFound when the entity
// is not in the last result set.
func (s *Session) BlacklistTarget(entityID id.EntityID) (StarTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentSearchID == nil {
		return StarTarget{}, dErrors.New(dErrors.CodePrecondition, "no search session bound")
	}
	record, ok := s.resultLocked(entityID)
	if !ok {
		return StarTarget{}, dErrors.New(dErrors.CodeNotFound, "entity not in current results")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return StarTarget{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode entity snapshot")
	}
	return StarTarget{
		Entity:     record,
		EntityData: data,
		SearchID:   *s.currentSearchID,
		Generation: s.generation,
	}, nil
}

// ConfirmBlacklist marks membership after the server accepted the star.
// A stale generation discards the mark: the newer search's reconcile owns
// the membership set now.
func (s *Session) ConfirmBlacklist(gen uint64, entityID id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.dispositions.MarkBlacklisted(entityID)
	return true
}

// UnblacklistTarget snapshots the inputs for removing a blacklist link.
// Local membership is not required: the server's starred set is the source
// of truth and may hold entries this session never saw.
//
// Errors: CodePrecondition when no search is bound.
func (s *Session) UnblacklistTarget(entityID id.EntityID) (id.SearchID, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentSearchID == nil {
		return 0, 0, dErrors.New(dErrors.CodePrecondition, "no search session bound")
	}
	return *s.currentSearchID, s.generation, nil
}

// ConfirmUnblacklist clears membership after the server accepted the unstar.
func (s *Session) ConfirmUnblacklist(gen uint64, entityID id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.dispositions.ClearBlacklisted(entityID)
	return true
}

// FlagEntity queues a known record for review. Auto-flagging uses this with
// no search id: at flag time the fresh search's history id is not yet
// reconciled, and capturing the previous binding would link the item to the
// wrong search. The id resolves lazily at disposition time instead.
func (s *Session) FlagEntity(entity domain.EntityRecord, reason string, now time.Time) (domain.ReviewItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.Flag(entity, reason, nil, now)
}

// FlagResult queues an entity from the current result set for review,
// capturing the bound search id if one is attached by now.
//
// Errors: CodeNotFound when the entity is not in the last result set.
func (s *Session) FlagResult(entityID id.EntityID, reason string, now time.Time) (domain.ReviewItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.resultLocked(entityID)
	if !ok {
		return domain.ReviewItem{}, false, dErrors.New(dErrors.CodeNotFound, "entity not in current results")
	}
	return s.reviews.Flag(record, reason, s.currentSearchID, now)
}

// MakeReviewDecision applies a decision to a queued item.
func (s *Session) MakeReviewDecision(itemID id.ReviewItemID, decision domain.ReviewStatus, notes string, actor id.UserID, now time.Time) (domain.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.MakeDecision(itemID, decision, notes, actor, now)
}

// RemoveFromReview deletes a review item regardless of status.
func (s *Session) RemoveFromReview(itemID id.ReviewItemID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.Remove(itemID)
}

// ReviewItem returns a snapshot of one queued item.
func (s *Session) ReviewItem(itemID id.ReviewItemID) (domain.ReviewItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.Get(itemID)
}

// ReviewItems lists queued items in flag order.
func (s *Session) ReviewItems() []domain.ReviewItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.List()
}

// PromoteToWhitelist whitelists a review item's entity and dequeues it in
// one mutex hold, so no interleaving can observe the entity whitelisted but
// still queued or vice versa.
//
// Errors: CodeNotFound when the item is not queued.
func (s *Session) PromoteToWhitelist(itemID id.ReviewItemID, reason string, actor id.UserID, now time.Time) (domain.DispositionEntry, domain.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.reviews.Get(itemID)
	if !ok {
		return domain.DispositionEntry{}, domain.ReviewItem{}, dErrors.New(dErrors.CodeNotFound, "review item not found")
	}
	entry, _, err := s.dispositions.AddToWhitelist(item.Entity, reason, actor, now)
	if err != nil {
		return domain.DispositionEntry{}, domain.ReviewItem{}, err
	}
	s.reviews.Remove(itemID)
	return entry, item, nil
}

// PromoteBlacklistTarget snapshots the inputs for blacklisting a review
// item's entity. The search id is the item's captured one if present, else
// the current binding.
//
// Errors: CodeNotFound when the item is not queued; CodePrecondition when
// neither the item nor the session carries a search id.
func (s *Session) PromoteBlacklistTarget(itemID id.ReviewItemID) (StarTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.reviews.Get(itemID)
	if !ok {
		return StarTarget{}, dErrors.New(dErrors.CodeNotFound, "review item not found")
	}

	searchID := item.SearchID
	if searchID == nil {
		searchID = s.currentSearchID
	}
	if searchID == nil {
		return StarTarget{}, dErrors.New(dErrors.CodePrecondition, "no search session bound")
	}

	data, err := json.Marshal(item.Entity)
	if err != nil {
		return StarTarget{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode entity snapshot")
	}
	return StarTarget{
		Entity:     item.Entity,
		EntityData: data,
		SearchID:   *searchID,
		Generation: s.generation,
	}, nil
}

// ConfirmPromoteBlacklist applies the server-confirmed promotion: the item
// leaves the queue unconditionally (the star succeeded), while membership is
// marked only if the generation still matches; otherwise a newer search's
// reconcile owns the set.
func (s *Session) ConfirmPromoteBlacklist(gen uint64, itemID id.ReviewItemID, entityID id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews.Remove(itemID)
	if s.generation != gen {
		return false
	}
	s.dispositions.MarkBlacklisted(entityID)
	return true
}

// Summary is the session state exposed over the API.
type Summary struct {
	SessionID       id.SessionID
	UserID          id.UserID
	CurrentSearchID *id.SearchID
	LastQuery       string
	ResultCount     int
	WhitelistCount  int
	BlacklistCount  int
	ReviewCount     int
	PendingReviews  int
}

// Summary snapshots the session's externally visible state.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := 0
	for _, item := range s.reviews.List() {
		if item.Status == domain.ReviewStatusPending {
			pending++
		}
	}

	var boundID *id.SearchID
	if s.currentSearchID != nil {
		searchID := *s.currentSearchID
		boundID = &searchID
	}
	return Summary{
		SessionID:       s.sessionID,
		UserID:          s.userID,
		CurrentSearchID: boundID,
		LastQuery:       s.lastQuery,
		ResultCount:     len(s.results),
		WhitelistCount:  len(s.dispositions.WhitelistEntries()),
		BlacklistCount:  len(s.dispositions.BlacklistedIDs()),
		ReviewCount:     s.reviews.Len(),
		PendingReviews:  pending,
	}
}
