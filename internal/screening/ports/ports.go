// Package ports defines the interfaces the screening service consumes.
// Interfaces live here so the service and the reconciler can share them
// without depending on concrete HTTP or audit implementations.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks SearchGateway,AuditRecorder

import (
	"context"

	"watchgate/internal/domain"
	"watchgate/internal/gateway"
	id "watchgate/pkg/domain"
	"watchgate/pkg/platform/audit"
)

// SearchGateway is the screening module's view of the sanctions search
// service. The concrete implementation lives in internal/gateway.
type SearchGateway interface {
	// SearchEntities runs a fuzzy entity search and returns the decoded
	// result page plus the server-side total.
	SearchEntities(ctx context.Context, query domain.SearchQuery) ([]domain.EntityRecord, int, error)

	// LatestHistory returns the most recent search-history row for the
	// authenticated account.
	LatestHistory(ctx context.Context) (gateway.HistoryRecord, error)

	// StarEntity marks an entity on the server (blacklist membership).
	StarEntity(ctx context.Context, req gateway.StarRequest) error

	// UnstarEntity removes a server-side star.
	UnstarEntity(ctx context.Context, entityID id.EntityID, searchID id.SearchID) error

	// StarredEntityIDs lists the entity ids starred under a search.
	StarredEntityIDs(ctx context.Context, searchID id.SearchID) ([]id.EntityID, error)
}

// AuditRecorder enqueues audit events without blocking the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}
