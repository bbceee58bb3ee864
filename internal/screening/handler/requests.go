package handler

import (
	"strings"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	pstrings "watchgate/pkg/platform/strings"
)

// maxFilterValues bounds the topic and dataset filter lists.
const maxFilterValues = 10

// maxReasonLen mirrors the domain bound on free-text rationale fields so
// oversized bodies are rejected at the edge.
const maxReasonLen = 1024

// SearchRequest is the HTTP request body for POST /screening/search.
type SearchRequest struct {
	Query    string   `json:"query"`
	Schema   string   `json:"schema,omitempty"`
	Topics   []string `json:"topics,omitempty"`
	Datasets []string `json:"datasets,omitempty"`
	Limit    int      `json:"limit,omitempty"`

	// Parsed values (populated by Validate)
	parsed domain.SearchQuery
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SearchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	query, err := domain.NewSearchQuery(r.Query, strings.TrimSpace(r.Schema), r.Limit)
	if err != nil {
		return err
	}

	if len(r.Topics) > maxFilterValues {
		return dErrors.New(dErrors.CodeValidation, "at most 10 topic filters")
	}
	if len(r.Datasets) > maxFilterValues {
		return dErrors.New(dErrors.CodeValidation, "at most 10 dataset filters")
	}

	// Topics are a fixed lowercase taxonomy; dataset names are opaque.
	query.Topics = pstrings.DedupeAndTrimLower(r.Topics)
	query.Datasets = pstrings.DedupeAndTrim(r.Datasets)

	r.parsed = query
	return nil
}

// ParsedQuery returns the validated search query.
func (r *SearchRequest) ParsedQuery() domain.SearchQuery {
	return r.parsed
}

// WhitelistAddRequest is the HTTP request body for POST /screening/whitelist.
type WhitelistAddRequest struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason,omitempty"`

	parsedEntityID id.EntityID
}

// Validate validates and parses the request.
func (r *WhitelistAddRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	entityID, err := id.ParseEntityID(r.EntityID)
	if err != nil {
		return err
	}
	r.parsedEntityID = entityID

	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > maxReasonLen {
		return dErrors.New(dErrors.CodeValidation, "reason must be 1024 characters or less")
	}
	return nil
}

// ParsedEntityID returns the validated entity id.
func (r *WhitelistAddRequest) ParsedEntityID() id.EntityID {
	return r.parsedEntityID
}

// BlacklistAddRequest is the HTTP request body for POST /screening/blacklist.
type BlacklistAddRequest struct {
	EntityID       string  `json:"entity_id"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`

	parsedEntityID id.EntityID
}

// Validate validates and parses the request.
func (r *BlacklistAddRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	entityID, err := id.ParseEntityID(r.EntityID)
	if err != nil {
		return err
	}
	r.parsedEntityID = entityID

	if r.RelevanceScore < 0 || r.RelevanceScore > 1 {
		return dErrors.New(dErrors.CodeValidation, "relevance_score must be between 0 and 1")
	}
	return nil
}

// ParsedEntityID returns the validated entity id.
func (r *BlacklistAddRequest) ParsedEntityID() id.EntityID {
	return r.parsedEntityID
}

// FlagRequest is the HTTP request body for POST /screening/review/flag.
type FlagRequest struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason"`

	parsedEntityID id.EntityID
}

// Validate validates and parses the request.
func (r *FlagRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	entityID, err := id.ParseEntityID(r.EntityID)
	if err != nil {
		return err
	}
	r.parsedEntityID = entityID

	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > maxReasonLen {
		return dErrors.New(dErrors.CodeValidation, "reason must be 1024 characters or less")
	}
	return nil
}

// ParsedEntityID returns the validated entity id.
func (r *FlagRequest) ParsedEntityID() id.EntityID {
	return r.parsedEntityID
}

// DecisionRequest is the HTTP request body for
// POST /screening/review/{itemID}/decision.
type DecisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`

	parsedDecision domain.ReviewStatus
}

// Validate validates and parses the request.
func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	status := domain.ReviewStatus(strings.ToLower(strings.TrimSpace(r.Decision)))
	if !status.IsDecision() {
		return dErrors.New(dErrors.CodeValidation, "decision must be approved, rejected, or needs_more_info")
	}
	r.parsedDecision = status

	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Notes) > maxReasonLen {
		return dErrors.New(dErrors.CodeValidation, "notes must be 1024 characters or less")
	}
	return nil
}

// ParsedDecision returns the validated decision status.
func (r *DecisionRequest) ParsedDecision() domain.ReviewStatus {
	return r.parsedDecision
}

// PromoteWhitelistRequest is the optional HTTP request body for
// POST /screening/review/{itemID}/whitelist.
type PromoteWhitelistRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Validate validates the request.
func (r *PromoteWhitelistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > maxReasonLen {
		return dErrors.New(dErrors.CodeValidation, "reason must be 1024 characters or less")
	}
	return nil
}
