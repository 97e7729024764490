// Package store persists coin sessions so a tally survives restarts and can
// be shared by the REPL, the dashboard and the HTTP API.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Store defines the session persistence operations.
type Store interface {
	Load(ctx context.Context, id string) (*coin.State, error)
	Save(ctx context.Context, id string, state *coin.State) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Session, error)

	// LogCommand appends one executed command to the session history.
	LogCommand(ctx context.Context, rec Command) error
	// History returns the latest commands of a session, newest first.
	// A limit <= 0 returns everything.
	History(ctx context.Context, id string, limit int) ([]Command, error)

	Close() error
}

// Session is a persisted tally.
type Session struct {
	ID        string     `json:"id"`
	State     coin.State `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Command is one history entry. Heads and Tails count the outcomes the
// command produced, not the running totals.
type Command struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"command"`
	Heads     uint64    `json:"heads"`
	Tails     uint64    `json:"tails"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id can be used as a session key: a UUID, or
// a user-chosen name of 1 to 64 letters, digits, '-', '_' or '.'.
func ValidSessionID(id string) bool {
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
