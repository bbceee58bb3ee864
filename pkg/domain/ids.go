// Package domain holds shared domain primitives: typed identifiers that make
// cross-entity mixups a compile error instead of a runtime bug.
//
// Two families live here. Analyst-side identifiers (UserID, SessionID) are
// UUIDs minted by the identity provider and carried in token claims. Screening
// identifiers (EntityID, SearchID, ReviewItemID) are assigned by the external
// search service or derived from its records, so they are opaque to us and
// validated only at trust boundaries.
package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "watchgate/pkg/domain-errors"
)

// UserID identifies the analyst performing screening actions.
type UserID uuid.UUID

// SessionID identifies one analyst session; screening state is scoped to it.
type SessionID uuid.UUID

// EntityID is the external search service's identifier for an entity record
// (e.g. "Q7747"). Opaque: never parsed beyond well-formedness.
type EntityID string

// SearchID is the server-assigned search-history identifier, discoverable
// only by polling the history endpoint after a search.
type SearchID int64

// ReviewItemID keys an item in the review queue. It is the entity id when one
// exists, or a generated fallback otherwise.
type ReviewItemID string

// maxOpaqueIDLen bounds externally supplied string identifiers.
const maxOpaqueIDLen = 256

func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
// Errors: CodeInvalidInput when empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	if err != nil {
		return UserID(uuid.Nil), err
	}
	return UserID(u), nil
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	if err != nil {
		return SessionID(uuid.Nil), err
	}
	return SessionID(u), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id as its canonical UUID string, so JSON encoding
// does not fall back to the raw byte array.
func (id UserID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText parses a canonical UUID string.
func (id *UserID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user id")
	}
	*id = UserID(u)
	return nil
}

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id as its canonical UUID string.
func (id SessionID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText parses a canonical UUID string.
func (id *SessionID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid session id")
	}
	*id = SessionID(u)
	return nil
}

// ParseEntityID validates an externally supplied entity identifier.
// The format is owned by the search service; we only reject input that is
// empty, oversized, or not printable UTF-8.
func ParseEntityID(s string) (EntityID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity id cannot be empty")
	}
	if len(s) > maxOpaqueIDLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity id is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity id is not valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "entity id contains control characters")
		}
	}
	return EntityID(s), nil
}

func (id EntityID) String() string { return string(id) }
func (id EntityID) IsNil() bool    { return id == "" }

// ParseSearchID parses a search-history id from a path or query segment.
func ParseSearchID(s string) (SearchID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid search id")
	}
	return SearchIDFromInt64(n)
}

// SearchIDFromInt64 validates a server-provided numeric history id.
func SearchIDFromInt64(n int64) (SearchID, error) {
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "search id must be positive")
	}
	return SearchID(n), nil
}

func (id SearchID) Int64() int64   { return int64(id) }
func (id SearchID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id SearchID) IsNil() bool    { return id == 0 }

// ReviewItemIDForEntity derives the queue key for an entity record.
func ReviewItemIDForEntity(entityID EntityID) ReviewItemID {
	return ReviewItemID(entityID)
}

// NewFallbackReviewItemID mints a queue key for records that arrive without
// an entity id.
func NewFallbackReviewItemID() ReviewItemID {
	return ReviewItemID("review-" + uuid.NewString())
}

// ParseReviewItemID validates an externally supplied review-item key.
func ParseReviewItemID(s string) (ReviewItemID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "review item id cannot be empty")
	}
	if len(s) > maxOpaqueIDLen+64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "review item id is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "review item id is not valid UTF-8")
	}
	return ReviewItemID(s), nil
}

func (id ReviewItemID) String() string { return string(id) }
func (id ReviewItemID) IsNil() bool    { return id == "" }
