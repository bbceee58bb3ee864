// Package admin exposes operator-only endpoints, currently the audit trail
// query. Routes registered here are expected to sit behind the admin-key
// middleware rather than bearer auth.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/platform/httputil"
	"watchgate/pkg/requestcontext"
)

// Recorder records audit events emitted by admin operations themselves.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Handler serves the admin API.
type Handler struct {
	store    audit.Store
	recorder Recorder
	logger   *slog.Logger
}

// New creates an admin handler reading from the given audit store.
func New(store audit.Store, recorder Recorder, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// Register mounts the admin routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleAuditEvents)
}

// HandleAuditEvents returns audit events matching the query parameters,
// newest first. Querying the trail is itself an audited operation.
func (h *Handler) HandleAuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	query, err := parseAuditQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.store.Query(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.recorder != nil {
		details := map[string]string{
			"limit":   strconv.Itoa(query.Limit),
			"results": strconv.Itoa(len(events)),
		}
		if query.Category != "" {
			details["category"] = string(query.Category)
		}
		if query.Type != "" {
			details["type"] = string(query.Type)
		}
		h.recorder.Record(ctx, audit.Event{
			Type:    audit.EventAuditQueried,
			Details: details,
		})
	}

	httputil.WriteJSON(w, http.StatusOK, AuditEventsResponse{
		Events: events,
		Count:  len(events),
	})
}

func parseAuditQuery(r *http.Request) (audit.Query, error) {
	params := r.URL.Query()

	query := audit.Query{
		Type: audit.EventType(params.Get("type")),
	}

	switch category := audit.EventCategory(params.Get("category")); category {
	case "", audit.CategoryCompliance, audit.CategorySecurity, audit.CategoryOperations:
		query.Category = category
	default:
		return audit.Query{}, dErrors.New(dErrors.CodeValidation, "unknown audit category")
	}

	if raw := params.Get("actor_id"); raw != "" {
		actorID, err := id.ParseUserID(raw)
		if err != nil {
			return audit.Query{}, dErrors.New(dErrors.CodeValidation, "actor_id must be a UUID")
		}
		query.ActorID = actorID
	}

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return audit.Query{}, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		query.Limit = limit
	}

	return query.Normalize(), nil
}
