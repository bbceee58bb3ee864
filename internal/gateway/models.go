package gateway

import (
	"encoding/json"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
)

// Wire types for the sanctions search service. Field names follow the
// service's JSON contract; exported types carry parsed domain values.

type searchRequest struct {
	Query    string   `json:"query"`
	Schema   string   `json:"schema,omitempty"`
	Topics   []string `json:"topics,omitempty"`
	Datasets []string `json:"datasets,omitempty"`
	Limit    int      `json:"limit"`
}

type searchResponse struct {
	Results []entityResult `json:"results"`
	Total   int            `json:"total"`
}

type entityResult struct {
	ID         string          `json:"id"`
	Caption    string          `json:"caption"`
	Schema     string          `json:"schema"`
	Topics     []string        `json:"topics"`
	Datasets   []string        `json:"datasets"`
	Score      float64         `json:"score"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

func (r entityResult) toDomain() (domain.EntityRecord, error) {
	entityID, err := id.ParseEntityID(r.ID)
	if err != nil {
		return domain.EntityRecord{}, err
	}
	return domain.EntityRecord{
		ID:         entityID,
		Caption:    r.Caption,
		Schema:     r.Schema,
		Topics:     r.Topics,
		Datasets:   r.Datasets,
		Score:      r.Score,
		Properties: r.Properties,
	}, nil
}

type historyResponse struct {
	Items []historyItem `json:"items"`
}

type historyItem struct {
	ID    int64  `json:"id"`
	Query string `json:"query"`
}

// HistoryRecord is the most recent server-side search history row.
type HistoryRecord struct {
	SearchID id.SearchID
	Query    string
}

// StarRequest links an entity to a search history row on the server.
// EntityData carries the full entity record as the server expects it.
type StarRequest struct {
	SearchID       id.SearchID
	EntityID       id.EntityID
	EntityName     string
	EntityData     json.RawMessage
	RelevanceScore float64
}

type starRequestWire struct {
	SearchHistoryID int64           `json:"search_history_id"`
	EntityID        string          `json:"entity_id"`
	EntityName      string          `json:"entity_name"`
	EntityData      json.RawMessage `json:"entity_data"`
	RelevanceScore  float64         `json:"relevance_score"`
}

type starredResponse struct {
	StarredEntityIDs []string `json:"starred_entity_ids"`
}
