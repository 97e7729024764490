package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agbru/coinsim/internal/coin"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps sessions in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    heads INTEGER NOT NULL DEFAULT 0,
    tails INTEGER NOT NULL DEFAULT 0,
    last_outcome TEXT NOT NULL DEFAULT 'T',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS commands (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    command TEXT NOT NULL,
    heads INTEGER NOT NULL,
    tails INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_commands_session ON commands(session_id, id);
`

// Open opens (creating if needed) the database at dbPath.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// from being split across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*coin.State, error) {
	var heads, tails int64
	var last string
	err := s.db.QueryRowContext(ctx,
		`SELECT heads, tails, last_outcome FROM sessions WHERE id = ?`, id,
	).Scan(&heads, &tails, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	outcome, err := coin.ParseOutcome(last)
	if err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return &coin.State{
		HeadsCount:  uint64(heads),
		TailsCount:  uint64(tails),
		LastOutcome: outcome,
	}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, state *coin.State) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, heads, tails, last_outcome, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     heads = excluded.heads,
		     tails = excluded.tails,
		     last_outcome = excluded.last_outcome,
		     updated_at = excluded.updated_at`,
		id, int64(state.HeadsCount), int64(state.TailsCount), state.LastOutcome.String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commands WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, heads, tails, last_outcome, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var heads, tails, createdAt, updatedAt int64
		var last string
		if err := rows.Scan(&sess.ID, &heads, &tails, &last, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		outcome, err := coin.ParseOutcome(last)
		if err != nil {
			return nil, fmt.Errorf("corrupt session %s: %w", sess.ID, err)
		}
		sess.State = coin.State{HeadsCount: uint64(heads), TailsCount: uint64(tails), LastOutcome: outcome}
		sess.CreatedAt = time.Unix(createdAt, 0)
		sess.UpdatedAt = time.Unix(updatedAt, 0)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) LogCommand(ctx context.Context, rec Command) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (session_id, command, heads, tails, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Name, int64(rec.Heads), int64(rec.Tails), createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to log command: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, id string, limit int) ([]Command, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, command, heads, tails, created_at
		 FROM commands WHERE session_id = ? ORDER BY id DESC LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var history []Command
	for rows.Next() {
		var c Command
		var heads, tails, createdAt int64
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Name, &heads, &tails, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		c.Heads, c.Tails = uint64(heads), uint64(tails)
		c.CreatedAt = time.Unix(createdAt, 0)
		history = append(history, c)
	}
	return history, rows.Err()
}
