// Package gateway is the HTTP client for the external sanctions search
// service. It owns the wire contract: search submission, history polling,
// star/unstar linkage, and starred-id listing. The client never retries;
// retry policy belongs to the reconciler, which re-polls history on its own
// fixed schedule.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"watchgate/internal/domain"
	gwmetrics "watchgate/internal/gateway/metrics"
	"watchgate/internal/platform/config"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/sentinel"
)

// Client talks to the sanctions search service over HTTP+JSON with bearer
// authentication. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
	metrics *gwmetrics.Metrics
	tracer  trace.Tracer
}

// New creates a gateway client from config. The metrics parameter may be nil
// in tests.
func New(cfg config.GatewayConfig, logger *slog.Logger, m *gwmetrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("watchgate/gateway"),
	}
}

// SearchEntities submits a screening query and returns the matching entity
// records with the server-reported total. The response does not carry the
// search-history id; callers needing it go through the reconciler.
func (c *Client) SearchEntities(ctx context.Context, q domain.SearchQuery) ([]domain.EntityRecord, int, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.SearchEntities",
		trace.WithAttributes(attribute.Int("limit", q.Limit)))
	defer span.End()

	req := searchRequest{
		Query:    q.Query,
		Schema:   q.Schema,
		Topics:   q.Topics,
		Datasets: q.Datasets,
		Limit:    q.Limit,
	}
	var resp searchResponse
	if err := c.call(ctx, span, "search_entities", http.MethodPost, "/api/v1/search/entities", req, &resp); err != nil {
		return nil, 0, err
	}

	records := make([]domain.EntityRecord, 0, len(resp.Results))
	for _, result := range resp.Results {
		record, err := result.toDomain()
		if err != nil {
			// One malformed record must not discard the page.
			c.logger.WarnContext(ctx, "skipping malformed entity record",
				"entity_id", result.ID,
				"error", err)
			continue
		}
		records = append(records, record)
	}
	span.SetAttributes(attribute.Int("results", len(records)))
	return records, resp.Total, nil
}

// LatestHistory fetches the single most recent search-history row.
//
// Errors: sentinel.ErrNotFound (as CodeNotFound) when the history list is
// empty.
func (c *Client) LatestHistory(ctx context.Context) (HistoryRecord, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.LatestHistory")
	defer span.End()

	var resp historyResponse
	if err := c.call(ctx, span, "latest_history", http.MethodGet, "/api/v1/search/history?limit=1", nil, &resp); err != nil {
		return HistoryRecord{}, err
	}
	if len(resp.Items) == 0 {
		return HistoryRecord{}, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "no search history recorded")
	}

	item := resp.Items[0]
	searchID, err := id.SearchIDFromInt64(item.ID)
	if err != nil {
		return HistoryRecord{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "search service returned invalid history id")
	}
	span.SetAttributes(attribute.Int64("search_id", item.ID))
	return HistoryRecord{SearchID: searchID, Query: item.Query}, nil
}

// StarEntity links an entity to a search-history row on the server. This is
// the persistence half of blacklisting.
func (c *Client) StarEntity(ctx context.Context, req StarRequest) error {
	ctx, span := c.tracer.Start(ctx, "gateway.StarEntity",
		trace.WithAttributes(attribute.Int64("search_id", req.SearchID.Int64())))
	defer span.End()

	wire := starRequestWire{
		SearchHistoryID: req.SearchID.Int64(),
		EntityID:        req.EntityID.String(),
		EntityName:      req.EntityName,
		EntityData:      req.EntityData,
		RelevanceScore:  req.RelevanceScore,
	}
	return c.call(ctx, span, "star_entity", http.MethodPost, "/api/v1/search/entities/star", wire, nil)
}

// UnstarEntity removes an entity's star for the given search on the server.
func (c *Client) UnstarEntity(ctx context.Context, entityID id.EntityID, searchID id.SearchID) error {
	ctx, span := c.tracer.Start(ctx, "gateway.UnstarEntity",
		trace.WithAttributes(attribute.Int64("search_id", searchID.Int64())))
	defer span.End()

	path := fmt.Sprintf("/api/v1/search/entities/star/%s/search/%d",
		url.PathEscape(entityID.String()), searchID.Int64())
	return c.call(ctx, span, "unstar_entity", http.MethodDelete, path, nil, nil)
}

// StarredEntityIDs lists the entity ids starred under the given search.
// Malformed ids in the response are skipped with a warning.
func (c *Client) StarredEntityIDs(ctx context.Context, searchID id.SearchID) ([]id.EntityID, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.StarredEntityIDs",
		trace.WithAttributes(attribute.Int64("search_id", searchID.Int64())))
	defer span.End()

	path := fmt.Sprintf("/api/v1/search/entities/starred/search/%d", searchID.Int64())
	var resp starredResponse
	if err := c.call(ctx, span, "starred_entity_ids", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	ids := make([]id.EntityID, 0, len(resp.StarredEntityIDs))
	for _, raw := range resp.StarredEntityIDs {
		entityID, err := id.ParseEntityID(raw)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed starred entity id",
				"entity_id", raw,
				"error", err)
			continue
		}
		ids = append(ids, entityID)
	}
	span.SetAttributes(attribute.Int("starred", len(ids)))
	return ids, nil
}

// call performs one HTTP round trip: marshal body, send with bearer auth,
// classify the status, decode into out. Exactly one attempt.
func (c *Client) call(ctx context.Context, span trace.Span, op, method, path string, body, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, body, out)
	c.metrics.ObserveRequest(op, outcomeLabel(status, err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		c.logger.WarnContext(ctx, "gateway request failed",
			"operation", op,
			"status", status,
			"error", err)
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "encode gateway request")
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "build gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, dErrors.Wrap(err, dErrors.CodeTimeout, "search service timed out")
		}
		return 0, dErrors.Wrap(fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err), dErrors.CodeUnavailable, "search service unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, statusError(resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, dErrors.Wrap(err, dErrors.CodeUnavailable, "decode gateway response")
		}
	}
	return resp.StatusCode, nil
}

// statusError maps a non-2xx upstream status to a coded error. 4xx statuses
// other than auth and not-found indicate a bug on our side of the contract,
// so they surface as internal rather than caller errors.
func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, "search service rejected credentials")
	case status == http.StatusForbidden:
		return dErrors.New(dErrors.CodeForbidden, "search service denied access")
	case status == http.StatusNotFound:
		return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "resource not found on search service")
	case status >= 500:
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable,
			fmt.Sprintf("search service returned status %d", status))
	default:
		return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("search service returned status %d", status))
	}
}

func outcomeLabel(status int, err error) string {
	switch {
	case status >= 200 && status <= 299:
		return "2xx"
	case status >= 400 && status <= 499:
		return "4xx"
	case status >= 500:
		return "5xx"
	case err != nil:
		return "error"
	default:
		return "2xx"
	}
}
