// Package httptransport assembles the public HTTP surface: the shared
// middleware chain, the authenticated screening API, the key-guarded admin
// API, and the liveness and metrics endpoints. Handlers stay in their feature
// packages; this package only composes them.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"watchgate/internal/admin"
	"watchgate/internal/platform/metrics"
	"watchgate/internal/ratelimit"
	screening "watchgate/internal/screening/handler"
	"watchgate/pkg/platform/httputil"
	adminmw "watchgate/pkg/platform/middleware/admin"
	"watchgate/pkg/platform/middleware/auth"
	"watchgate/pkg/platform/middleware/metadata"
	"watchgate/pkg/platform/middleware/recovery"
	"watchgate/pkg/platform/middleware/request"
	"watchgate/pkg/platform/middleware/requesttime"
)

// Deps carries the wired components the router mounts.
type Deps struct {
	Screening *screening.Handler
	Admin     *admin.Handler

	// Limiter guards the search route. Nil leaves search unthrottled.
	Limiter *ratelimit.Middleware

	TokenValidator auth.TokenValidator
	Revocations    auth.TokenRevocationChecker
	Security       auth.SecurityEventRecorder

	// AdminKeyHash is the bcrypt hash the admin routes compare X-Admin-Key
	// against. Empty rejects all admin requests.
	AdminKeyHash string

	// HTTPMetrics observes every route. Nil skips instrumentation.
	HTTPMetrics *metrics.HTTP

	Logger *slog.Logger
}

// NewRouter builds the chi router: recovery, request id, request time, and
// client metadata run on every request; auth, rate limiting, and the admin
// key apply per route group.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(recovery.Recover(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/screening", func(sr chi.Router) {
			sr.Use(auth.RequireAuth(d.TokenValidator, d.Revocations, d.Security, d.Logger))

			var searchMiddleware []func(http.Handler) http.Handler
			if d.Limiter != nil {
				searchMiddleware = append(searchMiddleware, d.Limiter.LimitSearches)
			}
			d.Screening.Register(sr, searchMiddleware...)
		})

		api.Route("/admin", func(ar chi.Router) {
			ar.Use(adminmw.RequireAdminKey(d.AdminKeyHash, d.Logger))
			d.Admin.Register(ar)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
