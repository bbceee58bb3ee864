// Package disposition holds per-session entity dispositions: the whitelist
// (full entries with reason and actor) and the blacklist membership set
// (ids only; the entries themselves live on the search service as stars).
package disposition

import (
	"sort"
	"time"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
)

// Store is the disposition state of one screening session. It is not safe
// for concurrent use on its own: the owning session's mutex serializes all
// access. Whitelist entries are session-local; blacklist membership mirrors
// the server-side starred set and is only mutated after the server confirms.
type Store struct {
	whitelist map[id.EntityID]domain.DispositionEntry
	blacklist map[id.EntityID]struct{}
}

// NewStore creates an empty disposition store.
func NewStore() *Store {
	return &Store{
		whitelist: make(map[id.EntityID]domain.DispositionEntry),
		blacklist: make(map[id.EntityID]struct{}),
	}
}

// AddToWhitelist inserts a whitelist entry for the entity. Adding an entity
// already whitelisted returns the existing entry unchanged and false: the
// first disposition wins and repeat calls are no-ops.
func (s *Store) AddToWhitelist(entity domain.EntityRecord, reason string, actor id.UserID, now time.Time) (domain.DispositionEntry, bool, error) {
	if existing, ok := s.whitelist[entity.ID]; ok {
		return existing, false, nil
	}
	entry, err := domain.NewDispositionEntry(entity, reason, actor, now)
	if err != nil {
		return domain.DispositionEntry{}, false, err
	}
	s.whitelist[entity.ID] = entry
	return entry, true, nil
}

// RemoveFromWhitelist deletes the entity's whitelist entry. Returns false
// when no entry existed.
func (s *Store) RemoveFromWhitelist(entityID id.EntityID) bool {
	if _, ok := s.whitelist[entityID]; !ok {
		return false
	}
	delete(s.whitelist, entityID)
	return true
}

// IsWhitelisted reports whitelist membership.
func (s *Store) IsWhitelisted(entityID id.EntityID) bool {
	_, ok := s.whitelist[entityID]
	return ok
}

// WhitelistEntries returns all whitelist entries ordered by decision time,
// oldest first, with entity id as the tiebreaker.
func (s *Store) WhitelistEntries() []domain.DispositionEntry {
	entries := make([]domain.DispositionEntry, 0, len(s.whitelist))
	for _, entry := range s.whitelist {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DecidedAt.Equal(entries[j].DecidedAt) {
			return entries[i].EntityID < entries[j].EntityID
		}
		return entries[i].DecidedAt.Before(entries[j].DecidedAt)
	})
	return entries
}

// MarkBlacklisted records server-confirmed blacklist membership.
func (s *Store) MarkBlacklisted(entityID id.EntityID) {
	s.blacklist[entityID] = struct{}{}
}

// ClearBlacklisted removes server-confirmed blacklist membership.
func (s *Store) ClearBlacklisted(entityID id.EntityID) {
	delete(s.blacklist, entityID)
}

// IsBlacklisted reports blacklist membership.
func (s *Store) IsBlacklisted(entityID id.EntityID) bool {
	_, ok := s.blacklist[entityID]
	return ok
}

// ReplaceBlacklist swaps the membership set wholesale. The reconciler calls
// this with the server's starred ids after binding a search.
func (s *Store) ReplaceBlacklist(ids []id.EntityID) {
	s.blacklist = make(map[id.EntityID]struct{}, len(ids))
	for _, entityID := range ids {
		s.blacklist[entityID] = struct{}{}
	}
}

// BlacklistedIDs returns the membership set in lexical order.
func (s *Store) BlacklistedIDs() []id.EntityID {
	ids := make([]id.EntityID, 0, len(s.blacklist))
	for entityID := range s.blacklist {
		ids = append(ids, entityID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FilterWhitelisted drops whitelisted entities from results when hide is
// set. With hide unset (or nothing whitelisted) the input slice is returned
// as-is.
func (s *Store) FilterWhitelisted(results []domain.EntityRecord, hide bool) []domain.EntityRecord {
	if !hide || len(s.whitelist) == 0 {
		return results
	}
	filtered := make([]domain.EntityRecord, 0, len(results))
	for _, record := range results {
		if s.IsWhitelisted(record.ID) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
