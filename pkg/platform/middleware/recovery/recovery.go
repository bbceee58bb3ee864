// Package recovery converts handler panics into 500 responses so one bad
// request cannot take the process down with it.
package recovery

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"watchgate/pkg/requestcontext"
)

// Recover middleware catches panics from downstream handlers, logs the stack,
// and replies with a generic 500. http.ErrAbortHandler is re-raised so the
// server's own abort path keeps working.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				ctx := r.Context()
				logger.ErrorContext(ctx, "handler panic recovered",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
