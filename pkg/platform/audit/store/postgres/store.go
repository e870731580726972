// Package postgres persists the audit trail when Kafka is not configured.
// Events land in a plain audit_events table, queryable per board.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"easel/pkg/platform/audit"
)

// Store implements audit.Store on Postgres.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit_events table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         UUID PRIMARY KEY,
			board_uid  TEXT NOT NULL,
			actor_id   TEXT NOT NULL DEFAULT '',
			action     TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_events_board_idx ON audit_events (board_uid, created_at);
	`)
	if err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, board_uid, actor_id, action, reason, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.New(),
		event.BoardUID,
		event.ActorID,
		event.Action,
		event.Reason,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByBoard returns a board's audit trail oldest first.
func (s *Store) ListByBoard(ctx context.Context, boardUID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT board_uid, actor_id, action, reason, request_id, created_at
		FROM audit_events
		WHERE board_uid = $1
		ORDER BY created_at
	`, boardUID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.BoardUID, &e.ActorID, &e.Action, &e.Reason, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
