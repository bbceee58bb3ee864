// Package request assigns each request an id for log and audit correlation.
// Inbound X-Request-ID values from trusted proxies are honored; otherwise a
// fresh UUID is minted. The id is echoed on the response.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"watchgate/pkg/requestcontext"
)

// HeaderRequestID is the correlation header read and echoed by RequestID.
const HeaderRequestID = "X-Request-ID"

// maxInboundIDLen guards against abusive header values being propagated into
// logs and audit rows.
const maxInboundIDLen = 128

// RequestID middleware stores a request id in the context and response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" || len(reqID) > maxInboundIDLen {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
