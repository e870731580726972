package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"easel/internal/board/models"
	"easel/pkg/platform/sentinel"
)

// PostgresStore persists the board directory in PostgreSQL. Member rows keep
// an explicit position so the member set round-trips in insertion order.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed board directory.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const boardSchema = `
CREATE TABLE IF NOT EXISTS boards (
	uid         TEXT        PRIMARY KEY,
	name        TEXT        NOT NULL DEFAULT '',
	access      TEXT        NOT NULL,
	lock_status TEXT        NOT NULL,
	owner_id    TEXT        NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS board_members (
	board_uid TEXT NOT NULL REFERENCES boards (uid) ON DELETE CASCADE,
	user_id   TEXT NOT NULL,
	position  INT  NOT NULL,
	PRIMARY KEY (board_uid, user_id)
);`

// EnsureSchema creates the directory tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, boardSchema); err != nil {
		return fmt.Errorf("ensure board schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, b *models.Board) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO boards (uid, name, access, lock_status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, q, b.UID, b.Name, string(b.Access), string(b.Lock), b.OwnerID, b.CreatedAt, b.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create board: %w", err)
	}
	if err := insertMembers(ctx, tx, b.UID, b.Members); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, uid string) (*models.Board, error) {
	const q = `
		SELECT uid, name, access, lock_status, owner_id, created_at, updated_at
		FROM boards WHERE uid = $1`

	b := &models.Board{}
	var access, lock string
	err := s.db.QueryRowContext(ctx, q, uid).Scan(&b.UID, &b.Name, &access, &lock, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find board: %w", err)
	}
	b.Access = models.AccessLevel(access)
	b.Lock = models.LockStatus(lock)

	if b.Members, err = s.members(ctx, uid); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *PostgresStore) Exists(ctx context.Context, uid string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM boards WHERE uid = $1)`, uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("board exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, b *models.Board) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	defer tx.Rollback()

	const q = `
		UPDATE boards SET name = $2, access = $3, lock_status = $4, owner_id = $5, updated_at = $6
		WHERE uid = $1`
	res, err := tx.ExecContext(ctx, q, b.UID, b.Name, string(b.Access), string(b.Lock), b.OwnerID, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update board: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}

	// Member set is rewritten whole; membership writes are serialized per
	// board above this layer.
	if _, err := tx.ExecContext(ctx, `DELETE FROM board_members WHERE board_uid = $1`, b.UID); err != nil {
		return fmt.Errorf("update board members: %w", err)
	}
	if err := insertMembers(ctx, tx, b.UID, b.Members); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, uid string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete board: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Touch(ctx context.Context, uid string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE boards SET updated_at = $2 WHERE uid = $1`, uid, now)
	if err != nil {
		return fmt.Errorf("touch board: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("touch board: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListAvailable(ctx context.Context, userID string) ([]*models.Board, error) {
	const q = `
		SELECT b.uid
		FROM boards b
		WHERE b.access = 'public'
		   OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_uid = b.uid AND m.user_id = $1)
		ORDER BY b.created_at, b.uid`
	return s.listByQuery(ctx, q, userID)
}

func (s *PostgresStore) ListExpiredOwnerless(ctx context.Context, cutoff time.Time) ([]*models.Board, error) {
	const q = `SELECT uid FROM boards WHERE owner_id = '' AND updated_at <= $1 ORDER BY created_at, uid`
	return s.listByQuery(ctx, q, cutoff)
}

func (s *PostgresStore) listByQuery(ctx context.Context, q string, arg any) ([]*models.Board, error) {
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	uids := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan board uid: %w", err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	out := make([]*models.Board, 0, len(uids))
	for _, uid := range uids {
		b, err := s.Find(ctx, uid)
		if errors.Is(err, sentinel.ErrNotFound) {
			// Board deleted between the listing and the hydrating read.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *PostgresStore) members(ctx context.Context, uid string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM board_members WHERE board_uid = $1 ORDER BY position ASC`, uid)
	if err != nil {
		return nil, fmt.Errorf("board members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan board member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("board members: %w", err)
	}
	return members, nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, uid string, members []string) error {
	const q = `INSERT INTO board_members (board_uid, user_id, position) VALUES ($1, $2, $3)`
	for i, userID := range members {
		if _, err := tx.ExecContext(ctx, q, uid, userID, i); err != nil {
			return fmt.Errorf("insert board member: %w", err)
		}
	}
	return nil
}
