package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"watchgate/internal/platform/config"
	"watchgate/pkg/platform/audit"
	"watchgate/pkg/platform/httputil"
	"watchgate/pkg/requestcontext"
)

// ExceededResponse is the 429 envelope.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware enforces the per-user search window. Checks that fail
// operationally let the request through: throttling guards the upstream, it
// must not take search down with it.
type Middleware struct {
	store    Store
	audit    AuditRecorder
	logger   *slog.Logger
	metrics  *Metrics
	limit    int
	window   time.Duration
	disabled bool
}

// New constructs the middleware from config. A disabled config turns every
// check into a pass-through.
func New(store Store, cfg config.RateLimitConfig, auditRec AuditRecorder, logger *slog.Logger, m *Metrics) *Middleware {
	if cfg.Disabled {
		logger.Info("search rate limiting disabled")
	}
	return &Middleware{
		store:    store,
		audit:    auditRec,
		logger:   logger,
		metrics:  m,
		limit:    cfg.SearchPerMinute,
		window:   time.Minute,
		disabled: cfg.Disabled,
	}
}

// LimitSearches wraps a handler with the sliding-window check, keyed by the
// authenticated user. Window state is reported on every response via the
// X-RateLimit headers.
func (m *Middleware) LimitSearches(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := limitKey(ctx)

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		setRateLimitHeaders(w, result)

		if !result.Allowed {
			m.reject(ctx, w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitKey scopes the window to the authenticated user, falling back to the
// client IP for anything reached outside the auth group.
func limitKey(ctx context.Context) string {
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		return "user:" + userID.String()
	}
	return "ip:" + requestcontext.ClientIP(ctx)
}

func (m *Middleware) reject(ctx context.Context, w http.ResponseWriter, result Result) {
	m.metrics.IncrementThrottled()
	m.logger.WarnContext(ctx, "search rate limit exceeded",
		"request_id", requestcontext.RequestID(ctx),
		"limit", result.Limit,
		"retry_after", result.RetryAfter,
	)
	if m.audit != nil {
		m.audit.Record(ctx, audit.Event{
			Type:   audit.EventRateLimitExceeded,
			Reason: "search window exhausted",
			Details: map[string]string{
				"limit":       strconv.Itoa(result.Limit),
				"retry_after": strconv.Itoa(result.RetryAfter),
			},
		})
	}

	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many search requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}

func setRateLimitHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
