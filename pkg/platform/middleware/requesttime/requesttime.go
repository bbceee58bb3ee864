// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request use the same "now" timestamp,
// ensuring consistency in audit events, disposition timestamps, and
// time-sensitive operations.
package requesttime

import (
	"net/http"
	"time"

	"watchgate/pkg/requestcontext"
)

// Middleware pins "now" when the request arrives; everything downstream
// reads it via requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		ctx := requestcontext.WithTime(r.Context(), now)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
