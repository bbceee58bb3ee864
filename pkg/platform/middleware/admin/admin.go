// Package admin guards operator-only routes (audit queries) with a shared
// admin key. Configuration carries only the bcrypt hash of the key.
package admin

import (
	"log/slog"
	"net/http"

	"watchgate/pkg/platform/secrets"
	"watchgate/pkg/requestcontext"
)

// HeaderAdminKey carries the plaintext admin key on operator requests.
const HeaderAdminKey = "X-Admin-Key"

// RequireAdminKey rejects requests whose X-Admin-Key does not verify against
// the configured bcrypt hash. An empty hash disables the routes entirely
// rather than leaving them open.
func RequireAdminKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if keyHash == "" {
				logger.WarnContext(ctx, "admin route called but no admin key configured",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "admin access not configured")
				return
			}

			key := r.Header.Get(HeaderAdminKey)
			if key == "" || secrets.Verify(key, keyHash) != nil {
				logger.WarnContext(ctx, "admin key mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "admin key required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
