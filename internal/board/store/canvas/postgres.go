package canvas

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"easel/internal/board/models"
	"easel/pkg/platform/sentinel"
)

// PostgresStore persists canvas logs and options in PostgreSQL. The session
// dispatcher serializes mutations per board, so the id-allocating insert
// never races with itself for the same board.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed canvas store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const canvasSchema = `
CREATE TABLE IF NOT EXISTS canvas_objects (
	board_uid  TEXT   NOT NULL,
	object_id  BIGINT NOT NULL,
	payload    JSONB  NOT NULL,
	PRIMARY KEY (board_uid, object_id)
);

CREATE TABLE IF NOT EXISTS canvas_options (
	board_uid  TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (board_uid, name)
);`

// EnsureSchema creates the canvas tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, canvasSchema); err != nil {
		return fmt.Errorf("ensure canvas schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendObject(ctx context.Context, boardUID string, object json.RawMessage) (int64, error) {
	if !models.ValidObjectPayload(object) {
		return 0, sentinel.ErrInvalidPayload
	}

	// Allocation and insert in one statement; per-board serialization at the
	// dispatcher means MAX(object_id) is stable within the call.
	const q = `
		INSERT INTO canvas_objects (board_uid, object_id, payload)
		SELECT $1, COALESCE(MAX(object_id), 0) + 1, $2
		FROM canvas_objects WHERE board_uid = $1
		RETURNING object_id`

	var id int64
	if err := s.db.QueryRowContext(ctx, q, boardUID, []byte(object)).Scan(&id); err != nil {
		return 0, fmt.Errorf("append canvas object: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateObject(ctx context.Context, boardUID string, objectID int64, object json.RawMessage) error {
	if !models.ValidObjectPayload(object) {
		return sentinel.ErrInvalidPayload
	}

	const q = `UPDATE canvas_objects SET payload = $3 WHERE board_uid = $1 AND object_id = $2`
	res, err := s.db.ExecContext(ctx, q, boardUID, objectID, []byte(object))
	if err != nil {
		return fmt.Errorf("update canvas object: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update canvas object: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearObjects(ctx context.Context, boardUID string) error {
	// Emptying the table per board also resets id allocation: the next
	// append computes MAX over zero rows and starts from 1 again.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM canvas_objects WHERE board_uid = $1`, boardUID); err != nil {
		return fmt.Errorf("clear canvas objects: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListObjects(ctx context.Context, boardUID string) ([]models.CanvasObject, error) {
	const q = `SELECT object_id, payload FROM canvas_objects WHERE board_uid = $1 ORDER BY object_id ASC`
	rows, err := s.db.QueryContext(ctx, q, boardUID)
	if err != nil {
		return nil, fmt.Errorf("list canvas objects: %w", err)
	}
	defer rows.Close()

	out := []models.CanvasObject{}
	for rows.Next() {
		var obj models.CanvasObject
		var payload []byte
		if err := rows.Scan(&obj.ObjectID, &payload); err != nil {
			return nil, fmt.Errorf("scan canvas object: %w", err)
		}
		obj.Object = json.RawMessage(payload)
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list canvas objects: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MergeOptions(ctx context.Context, boardUID string, delta map[string]string) error {
	if !models.ValidOptions(delta) {
		return sentinel.ErrInvalidOptions
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge options: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO canvas_options (board_uid, name, value) VALUES ($1, $2, $3)
		ON CONFLICT (board_uid, name) DO UPDATE SET value = EXCLUDED.value`
	for name, val := range delta {
		if _, err := tx.ExecContext(ctx, q, boardUID, name, val); err != nil {
			return fmt.Errorf("merge option %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("merge options: %w", err)
	}
	return nil
}

func (s *PostgresStore) Options(ctx context.Context, boardUID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM canvas_options WHERE board_uid = $1`, boardUID)
	if err != nil {
		return nil, fmt.Errorf("read canvas options: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, val string
		if err := rows.Scan(&name, &val); err != nil {
			return nil, fmt.Errorf("scan canvas option: %w", err)
		}
		out[name] = val
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read canvas options: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DropBoard(ctx context.Context, boardUID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("drop board canvas: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM canvas_objects WHERE board_uid = $1`, boardUID); err != nil {
		return fmt.Errorf("drop board objects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM canvas_options WHERE board_uid = $1`, boardUID); err != nil {
		return fmt.Errorf("drop board options: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop board canvas: %w", err)
	}
	return nil
}
