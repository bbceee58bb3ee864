package admin

import "watchgate/pkg/platform/audit"

// AuditEventsResponse wraps the queried slice of the audit trail. Events keep
// their storage shape on the wire; the trail is compliance evidence and
// reshaping it at the edge would only invite drift.
type AuditEventsResponse struct {
	Events []audit.Event `json:"events"`
	Count  int           `json:"count"`
}
