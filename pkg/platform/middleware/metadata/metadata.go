// Package metadata extracts client metadata (IP, parsed User-Agent) early in
// the middleware chain so security audit events and logs can reference who
// performed an action without re-parsing headers downstream.
package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"watchgate/pkg/requestcontext"
)

// ClientMetadata extracts the client IP address and a normalized User-Agent
// from the request and stores both in the context.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))
		ctx = requestcontext.WithClientAgent(ctx, parseAgent(r.Header.Get("User-Agent")))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseAgent reduces a raw User-Agent header to the fields the audit trail
// records. Raw UA strings are never stored: they are high-cardinality and can
// carry identifying detail we do not need.
func parseAgent(raw string) requestcontext.ClientAgent {
	if raw == "" {
		return requestcontext.ClientAgent{}
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	return requestcontext.ClientAgent{
		Browser: browser,
		OS:      ua.OSInfo().Name,
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// Check X-Forwarded-For header first (standard for proxied requests)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
		// Take the first IP which is the original client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header (used by nginx and other proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (direct connection)
	// RemoteAddr is in format "ip:port", so we need to strip the port
	if addr := r.RemoteAddr; addr != "" {
		// For IPv6, format is [::1]:port
		// For IPv4, format is 127.0.0.1:port
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
