package handler

import (
	"time"

	"watchgate/internal/domain"
	"watchgate/internal/screening/service"
	"watchgate/internal/screening/session"
	id "watchgate/pkg/domain"
)

// ResultResponse is one search result with its disposition badges.
type ResultResponse struct {
	Entity      domain.EntityRecord `json:"entity"`
	Whitelisted bool                `json:"whitelisted"`
	Blacklisted bool                `json:"blacklisted"`
	InReview    bool                `json:"in_review"`
}

// SearchResponse is the HTTP response for POST /screening/search.
type SearchResponse struct {
	Results      []ResultResponse `json:"results"`
	Total        int              `json:"total"`
	FlaggedCount int              `json:"flagged_count"`
}

// ResultsResponse is the HTTP response for GET /screening/results.
type ResultsResponse struct {
	Results []ResultResponse `json:"results"`
}

// SessionResponse is the HTTP response for GET /screening/session.
type SessionResponse struct {
	SessionID       string `json:"session_id"`
	UserID          string `json:"user_id"`
	CurrentSearchID *int64 `json:"current_search_id,omitempty"`
	LastQuery       string `json:"last_query,omitempty"`
	ResultCount     int    `json:"result_count"`
	WhitelistCount  int    `json:"whitelist_count"`
	BlacklistCount  int    `json:"blacklist_count"`
	ReviewCount     int    `json:"review_count"`
	PendingReviews  int    `json:"pending_reviews"`
}

// WhitelistEntryResponse is one whitelist entry.
type WhitelistEntryResponse struct {
	EntityID  string              `json:"entity_id"`
	Entity    domain.EntityRecord `json:"entity"`
	Reason    string              `json:"reason,omitempty"`
	DecidedBy string              `json:"decided_by"`
	DecidedAt time.Time           `json:"decided_at"`
}

// WhitelistResponse is the HTTP response for GET /screening/whitelist.
type WhitelistResponse struct {
	Entries []WhitelistEntryResponse `json:"entries"`
}

// BlacklistResponse is the HTTP response for GET /screening/blacklist.
type BlacklistResponse struct {
	EntityIDs []string `json:"entity_ids"`
}

// ReviewItemResponse is one review-queue item.
type ReviewItemResponse struct {
	ID         string              `json:"id"`
	Entity     domain.EntityRecord `json:"entity"`
	Reasons    []string            `json:"reasons"`
	FlaggedAt  time.Time           `json:"flagged_at"`
	Status     string              `json:"status"`
	Notes      string              `json:"notes,omitempty"`
	ReviewedAt *time.Time          `json:"reviewed_at,omitempty"`
	ReviewedBy string              `json:"reviewed_by,omitempty"`
	SearchID   *int64              `json:"search_id,omitempty"`
}

// ReviewQueueResponse is the HTTP response for GET /screening/review.
type ReviewQueueResponse struct {
	Items []ReviewItemResponse `json:"items"`
}

// FromSearchOutcome converts a search outcome to an HTTP response.
func FromSearchOutcome(outcome service.SearchOutcome) SearchResponse {
	return SearchResponse{
		Results:      FromResultViews(outcome.Results),
		Total:        outcome.Total,
		FlaggedCount: outcome.FlaggedCount,
	}
}

// FromResultViews converts annotated result rows to HTTP responses.
func FromResultViews(views []session.ResultView) []ResultResponse {
	out := make([]ResultResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ResultResponse{
			Entity:      v.Entity,
			Whitelisted: v.Whitelisted,
			Blacklisted: v.Blacklisted,
			InReview:    v.InReview,
		})
	}
	return out
}

// FromSummary converts a session summary to an HTTP response.
func FromSummary(summary session.Summary) SessionResponse {
	resp := SessionResponse{
		SessionID:      summary.SessionID.String(),
		UserID:         summary.UserID.String(),
		LastQuery:      summary.LastQuery,
		ResultCount:    summary.ResultCount,
		WhitelistCount: summary.WhitelistCount,
		BlacklistCount: summary.BlacklistCount,
		ReviewCount:    summary.ReviewCount,
		PendingReviews: summary.PendingReviews,
	}
	if summary.CurrentSearchID != nil {
		searchID := summary.CurrentSearchID.Int64()
		resp.CurrentSearchID = &searchID
	}
	return resp
}

// FromEntry converts a disposition entry to an HTTP response.
func FromEntry(entry domain.DispositionEntry) WhitelistEntryResponse {
	return WhitelistEntryResponse{
		EntityID:  entry.EntityID.String(),
		Entity:    entry.Entity,
		Reason:    entry.Reason,
		DecidedBy: entry.DecidedBy.String(),
		DecidedAt: entry.DecidedAt,
	}
}

// FromEntries converts disposition entries to HTTP responses.
func FromEntries(entries []domain.DispositionEntry) []WhitelistEntryResponse {
	out := make([]WhitelistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromEntry(entry))
	}
	return out
}

// FromEntityIDs converts entity ids to the blacklist response.
func FromEntityIDs(ids []id.EntityID) BlacklistResponse {
	out := make([]string, 0, len(ids))
	for _, entityID := range ids {
		out = append(out, entityID.String())
	}
	return BlacklistResponse{EntityIDs: out}
}

// FromReviewItem converts a review item to an HTTP response.
func FromReviewItem(item domain.ReviewItem) ReviewItemResponse {
	resp := ReviewItemResponse{
		ID:         string(item.ID),
		Entity:     item.Entity,
		Reasons:    item.Reasons,
		FlaggedAt:  item.FlaggedAt,
		Status:     string(item.Status),
		Notes:      item.Notes,
		ReviewedAt: item.ReviewedAt,
	}
	if !item.ReviewedBy.IsNil() {
		resp.ReviewedBy = item.ReviewedBy.String()
	}
	if item.SearchID != nil {
		searchID := item.SearchID.Int64()
		resp.SearchID = &searchID
	}
	return resp
}

// FromReviewItems converts review items to HTTP responses.
func FromReviewItems(items []domain.ReviewItem) []ReviewItemResponse {
	out := make([]ReviewItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromReviewItem(item))
	}
	return out
}
