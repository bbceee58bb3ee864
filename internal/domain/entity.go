// Package domain holds the screening domain model shared by the gateway
// client, the disposition and review stores, and the HTTP layer: entity
// records as the search service returns them, disposition entries, and the
// review-queue state machine.
package domain

import (
	"encoding/json"
	"slices"
	"strings"

	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
)

// Risk topics the auto-flagging policy reacts to. The search service owns the
// full topic taxonomy; these are the two this service acts on.
const (
	TopicSanction = "sanction"
	TopicPEP      = "pep"
)

// EntityRecord is an entity as returned by the search service. It is
// immutable input to this subsystem: snapshots taken at disposition or flag
// time are never re-fetched.
type EntityRecord struct {
	ID         id.EntityID     `json:"id"`
	Caption    string          `json:"caption"`
	Schema     string          `json:"schema"`
	Topics     []string        `json:"topics,omitempty"`
	Datasets   []string        `json:"datasets,omitempty"`
	Score      float64         `json:"score"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// HasTopic reports whether the record carries the given risk topic.
func (e EntityRecord) HasTopic(topic string) bool {
	return slices.Contains(e.Topics, topic)
}

// SearchQuery is a validated search request from an analyst.
type SearchQuery struct {
	Query    string
	Schema   string
	Topics   []string
	Datasets []string
	Limit    int
}

// Search result sizes the service will request from the gateway.
const (
	DefaultSearchLimit = 25
	MaxSearchLimit     = 100
)

// NewSearchQuery validates analyst-supplied search parameters. Topic and
// dataset filters are optional and assigned directly on the result.
func NewSearchQuery(query, schema string, limit int) (SearchQuery, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchQuery{}, dErrors.New(dErrors.CodeValidation, "query is required")
	}
	if len(query) > 512 {
		return SearchQuery{}, dErrors.New(dErrors.CodeValidation, "query must be 512 characters or less")
	}
	switch {
	case limit == 0:
		limit = DefaultSearchLimit
	case limit < 0:
		return SearchQuery{}, dErrors.New(dErrors.CodeValidation, "limit must be positive")
	case limit > MaxSearchLimit:
		return SearchQuery{}, dErrors.New(dErrors.CodeValidation, "limit must be at most 100")
	}
	return SearchQuery{
		Query:  query,
		Schema: schema,
		Limit:  limit,
	}, nil
}

