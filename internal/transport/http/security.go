package httptransport

import (
	"context"

	"watchgate/pkg/platform/audit"
)

// AuditRecorder is the audit pipeline entry point the transport layer needs.
// Satisfied by the audit worker.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// SecurityRecorder adapts the audit pipeline to the auth middleware's
// SecurityEventRecorder so rejected tokens land in the trail.
type SecurityRecorder struct {
	audit AuditRecorder
}

// NewSecurityRecorder wraps the given recorder. A nil recorder yields a
// recorder that drops events.
func NewSecurityRecorder(recorder AuditRecorder) *SecurityRecorder {
	return &SecurityRecorder{audit: recorder}
}

// TokenRejected records why a bearer token was turned away. Client metadata
// and the request id ride along via context enrichment in the worker.
func (s *SecurityRecorder) TokenRejected(ctx context.Context, reason string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		Type:   audit.EventTokenRejected,
		Reason: reason,
	})
}
