// Package handler exposes the screening workflow over HTTP. Every route is
// scoped to the caller's screening session, resolved from the token claims
// the auth middleware placed on the context.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"watchgate/internal/domain"
	"watchgate/internal/screening/service"
	"watchgate/internal/screening/session"
	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/httputil"
	"watchgate/pkg/requestcontext"
)

// Service defines the screening operations the HTTP layer depends on.
type Service interface {
	Search(ctx context.Context, sess *session.Session, query domain.SearchQuery) (service.SearchOutcome, error)
	Results(sess *session.Session, hideWhitelisted bool) []session.ResultView
	Summary(sess *session.Session) session.Summary

	AddToWhitelist(ctx context.Context, sess *session.Session, entityID id.EntityID, reason string) (domain.DispositionEntry, bool, error)
	RemoveFromWhitelist(ctx context.Context, sess *session.Session, entityID id.EntityID) bool
	WhitelistEntries(sess *session.Session) []domain.DispositionEntry

	BlacklistedIDs(sess *session.Session) []id.EntityID
	BlacklistEntity(ctx context.Context, sess *session.Session, entityID id.EntityID, relevanceScore float64) error
	UnblacklistEntity(ctx context.Context, sess *session.Session, entityID id.EntityID) error

	FlagForReview(ctx context.Context, sess *session.Session, entityID id.EntityID, reason string) (domain.ReviewItem, error)
	ReviewItems(sess *session.Session) []domain.ReviewItem
	MakeReviewDecision(ctx context.Context, sess *session.Session, itemID id.ReviewItemID, decision domain.ReviewStatus, notes string) (domain.ReviewItem, error)
	RemoveFromReview(ctx context.Context, sess *session.Session, itemID id.ReviewItemID) bool
	PromoteToWhitelist(ctx context.Context, sess *session.Session, itemID id.ReviewItemID, reason string) (domain.DispositionEntry, error)
	PromoteToBlacklist(ctx context.Context, sess *session.Session, itemID id.ReviewItemID) (domain.ReviewItem, error)
}

// Handler wires screening endpoints to the screening service.
type Handler struct {
	service  Service
	sessions *session.Manager
	logger   *slog.Logger
}

// New constructs a screening handler with its dependencies.
func New(service Service, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// Register mounts screening endpoints on the router. The router has already
// applied bearer auth; searchMiddleware (rate limiting) wraps only the
// search route.
func (h *Handler) Register(r chi.Router, searchMiddleware ...func(http.Handler) http.Handler) {
	r.With(searchMiddleware...).Post("/search", h.HandleSearch)
	r.Get("/session", h.HandleSession)
	r.Get("/results", h.HandleResults)

	r.Get("/whitelist", h.HandleWhitelist)
	r.Post("/whitelist", h.HandleWhitelistAdd)
	r.Delete("/whitelist/{entityID}", h.HandleWhitelistRemove)

	r.Get("/blacklist", h.HandleBlacklist)
	r.Post("/blacklist", h.HandleBlacklistAdd)
	r.Delete("/blacklist/{entityID}", h.HandleBlacklistRemove)

	r.Get("/review", h.HandleReviewQueue)
	r.Post("/review/flag", h.HandleFlag)
	r.Post("/review/{itemID}/decision", h.HandleDecision)
	r.Delete("/review/{itemID}", h.HandleReviewRemove)
	r.Post("/review/{itemID}/whitelist", h.HandlePromoteWhitelist)
	r.Post("/review/{itemID}/blacklist", h.HandlePromoteBlacklist)
}

// session resolves the caller's screening session from the token claims on
// the context, creating it on first use.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	ctx := r.Context()
	sessionID := requestcontext.SessionID(ctx)
	userID := requestcontext.UserID(ctx)
	if sessionID.IsNil() || userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	return h.sessions.Get(sessionID, userID), true
}

func entityIDParam(w http.ResponseWriter, r *http.Request) (id.EntityID, bool) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return entityID, true
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (id.ReviewItemID, bool) {
	itemID, err := id.ParseReviewItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return itemID, true
}

// HandleSearch handles POST /screening/search requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SearchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.Search(ctx, sess, req.ParsedQuery())
	if err != nil {
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"query", req.Query,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "search executed",
		"request_id", requestID,
		"session_id", sess.ID(),
		"results", outcome.Total,
		"flagged", outcome.FlaggedCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSearchOutcome(outcome))
}

// HandleSession handles GET /screening/session requests.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSummary(h.service.Summary(sess)))
}

// HandleResults handles GET /screening/results requests.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	hide := false
	if v := r.URL.Query().Get("hide_whitelisted"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "hide_whitelisted must be a boolean"))
			return
		}
		hide = parsed
	}

	views := h.service.Results(sess, hide)
	httputil.WriteJSON(w, http.StatusOK, ResultsResponse{Results: FromResultViews(views)})
}

// HandleWhitelist handles GET /screening/whitelist requests.
func (h *Handler) HandleWhitelist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	entries := h.service.WhitelistEntries(sess)
	httputil.WriteJSON(w, http.StatusOK, WhitelistResponse{Entries: FromEntries(entries)})
}

// HandleWhitelistAdd handles POST /screening/whitelist requests. Adding an
// already-whitelisted entity returns the existing entry with 200.
func (h *Handler) HandleWhitelistAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[WhitelistAddRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, created, err := h.service.AddToWhitelist(ctx, sess, req.ParsedEntityID(), req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "whitelist add failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"entity_id", req.EntityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, FromEntry(entry))
}

// HandleWhitelistRemove handles DELETE /screening/whitelist/{entityID}
// requests. Removal is idempotent: unknown entities still return 204.
func (h *Handler) HandleWhitelistRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	entityID, ok := entityIDParam(w, r)
	if !ok {
		return
	}

	h.service.RemoveFromWhitelist(r.Context(), sess, entityID)
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// HandleBlacklist handles GET /screening/blacklist requests.
func (h *Handler) HandleBlacklist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntityIDs(h.service.BlacklistedIDs(sess)))
}

// HandleBlacklistAdd handles POST /screening/blacklist requests.
func (h *Handler) HandleBlacklistAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[BlacklistAddRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.BlacklistEntity(ctx, sess, req.ParsedEntityID(), req.RelevanceScore); err != nil {
		h.logger.ErrorContext(ctx, "blacklist add failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"entity_id", req.EntityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// HandleBlacklistRemove handles DELETE /screening/blacklist/{entityID}
// requests.
func (h *Handler) HandleBlacklistRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	entityID, ok := entityIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.UnblacklistEntity(ctx, sess, entityID); err != nil {
		h.logger.ErrorContext(ctx, "blacklist remove failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sess.ID(),
			"entity_id", entityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// HandleReviewQueue handles GET /screening/review requests.
func (h *Handler) HandleReviewQueue(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	items := h.service.ReviewItems(sess)
	httputil.WriteJSON(w, http.StatusOK, ReviewQueueResponse{Items: FromReviewItems(items)})
}

// HandleFlag handles POST /screening/review/flag requests. Re-flagging an
// entity merges the reason into the existing item.
func (h *Handler) HandleFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[FlagRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.FlagForReview(ctx, sess, req.ParsedEntityID(), req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "review flag failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"entity_id", req.EntityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReviewItem(item))
}

// HandleDecision handles POST /screening/review/{itemID}/decision requests.
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.MakeReviewDecision(ctx, sess, itemID, req.ParsedDecision(), req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "review decision failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"item_id", itemID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReviewItem(item))
}

// HandleReviewRemove handles DELETE /screening/review/{itemID} requests.
func (h *Handler) HandleReviewRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	if !h.service.RemoveFromReview(r.Context(), sess, itemID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "review item not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// HandlePromoteWhitelist handles POST /screening/review/{itemID}/whitelist
// requests. The body is optional; it may carry a whitelisting reason.
func (h *Handler) HandlePromoteWhitelist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var reason string
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[PromoteWhitelistRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		reason = req.Reason
	}

	entry, err := h.service.PromoteToWhitelist(ctx, sess, itemID, reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "review promotion to whitelist failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"item_id", itemID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntry(entry))
}

// HandlePromoteBlacklist handles POST /screening/review/{itemID}/blacklist
// requests.
func (h *Handler) HandlePromoteBlacklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.service.PromoteToBlacklist(ctx, sess, itemID)
	if err != nil {
		h.logger.ErrorContext(ctx, "review promotion to blacklist failed",
			"request_id", requestID,
			"session_id", sess.ID(),
			"item_id", itemID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReviewItem(item))
}
