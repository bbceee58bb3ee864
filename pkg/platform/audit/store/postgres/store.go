// Package postgres persists the audit trail in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	id "watchgate/pkg/domain"
	audit "watchgate/pkg/platform/audit"
	txcontext "watchgate/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL. Events are immutable once
// written; Append is idempotent on event ID so a replay cannot double-count.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const schema = `
	CREATE TABLE IF NOT EXISTS audit_events (
		id           UUID PRIMARY KEY,
		category     TEXT NOT NULL,
		event_type   TEXT NOT NULL,
		timestamp    TIMESTAMPTZ NOT NULL,
		actor_id     UUID,
		session_id   UUID,
		entity_id    TEXT NOT NULL DEFAULT '',
		search_id    BIGINT,
		decision     TEXT NOT NULL DEFAULT '',
		reason       TEXT NOT NULL DEFAULT '',
		request_id   TEXT NOT NULL DEFAULT '',
		client_ip    TEXT NOT NULL DEFAULT '',
		client_agent TEXT NOT NULL DEFAULT '',
		details      JSONB
	);
	CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx ON audit_events (timestamp DESC);
	CREATE INDEX IF NOT EXISTS audit_events_category_idx ON audit_events (category, timestamp DESC);
	CREATE INDEX IF NOT EXISTS audit_events_actor_idx ON audit_events (actor_id, timestamp DESC);
`

// EnsureSchema creates the audit_events table and its indexes when they do
// not exist yet. Deployments with managed migrations can skip this.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append inserts one audit event. Duplicate event IDs are ignored via
// ON CONFLICT DO NOTHING.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, event_type, timestamp, actor_id, session_id,
			entity_id, search_id, decision, reason,
			request_id, client_ip, client_agent, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`

	var details []byte
	if len(event.Details) > 0 {
		var err error
		details, err = json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}

	var actorID, sessionID *uuid.UUID
	if !event.ActorID.IsNil() {
		u := uuid.UUID(event.ActorID)
		actorID = &u
	}
	if !event.SessionID.IsNil() {
		u := uuid.UUID(event.SessionID)
		sessionID = &u
	}

	var searchID *int64
	if event.SearchID != nil {
		n := event.SearchID.Int64()
		searchID = &n
	}

	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		string(event.Type),
		event.Timestamp,
		actorID,
		sessionID,
		string(event.EntityID),
		searchID,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.ClientAgent,
		details,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Query returns matching events, newest first, up to the query limit.
func (s *Store) Query(ctx context.Context, q audit.Query) ([]audit.Event, error) {
	q = q.Normalize()

	query := `
		SELECT id, category, event_type, timestamp, actor_id, session_id,
		       entity_id, search_id, decision, reason,
		       request_id, client_ip, client_agent, details
		FROM audit_events
	`

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if q.Category != "" {
		add("category = $%d", string(q.Category))
	}
	if q.Type != "" {
		add("event_type = $%d", string(q.Type))
	}
	if !q.ActorID.IsNil() {
		add("actor_id = $%d", uuid.UUID(q.ActorID))
	}
	if !q.Since.IsZero() {
		add("timestamp >= $%d", q.Since)
	}
	if !q.Until.IsZero() {
		add("timestamp <= $%d", q.Until)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents scans the result rows into audit.Event values.
func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event     audit.Event
			category  string
			eventType string
			actorID   *uuid.UUID
			sessionID *uuid.UUID
			entityID  string
			searchID  *int64
			details   []byte
		)

		err := rows.Scan(
			&event.ID,
			&category,
			&eventType,
			&event.Timestamp,
			&actorID,
			&sessionID,
			&entityID,
			&searchID,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ClientIP,
			&event.ClientAgent,
			&details,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		event.Type = audit.EventType(eventType)
		event.EntityID = id.EntityID(entityID)
		if actorID != nil {
			event.ActorID = id.UserID(*actorID)
		}
		if sessionID != nil {
			event.SessionID = id.SessionID(*sessionID)
		}
		if searchID != nil {
			sid := id.SearchID(*searchID)
			event.SearchID = &sid
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
