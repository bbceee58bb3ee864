package session

import (
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	id "watchgate/pkg/domain"
)

// Manager hands out screening sessions keyed by the JWT session id. Sessions
// idle past the TTL are evicted with their in-flight reconcile cancelled;
// every access slides the expiry. State here is a working cache: the search
// service's starred set remains the source of truth for blacklist
// membership, so an evicted session costs highlighting, not data.
type Manager struct {
	cache  *cache.Cache
	logger *slog.Logger
}

// NewManager creates a session manager with the given idle TTL and eviction
// sweep interval.
func NewManager(ttl, sweepInterval time.Duration, logger *slog.Logger) *Manager {
	c := cache.New(ttl, sweepInterval)
	c.OnEvicted(func(key string, value interface{}) {
		if sess, ok := value.(*Session); ok {
			sess.Close()
		}
		logger.Debug("screening session evicted", "session_id", key)
	})
	return &Manager{cache: c, logger: logger}
}

// Get returns the session for the id, creating it on first use. Concurrent
// first accesses race on Add; the loser adopts the winner's session.
func (m *Manager) Get(sessionID id.SessionID, userID id.UserID) *Session {
	key := sessionID.String()
	for {
		if value, ok := m.cache.Get(key); ok {
			sess := value.(*Session)
			m.cache.SetDefault(key, sess) // slide expiry
			return sess
		}

		sess := New(sessionID, userID)
		if err := m.cache.Add(key, sess, cache.DefaultExpiration); err != nil {
			continue
		}
		m.logger.Debug("screening session created",
			"session_id", key,
			"user_id", userID.String())
		return sess
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.cache.ItemCount()
}

// Close evicts every session, cancelling their reconciles. Called on
// shutdown.
func (m *Manager) Close() {
	for key := range m.cache.Items() {
		m.cache.Delete(key)
	}
}
