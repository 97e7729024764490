package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/agbru/coinsim/internal/coin"
)

// MemoryStore is a map-backed Store for runs without a database.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	history  map[string][]Command
	nextID   int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		history:  make(map[string][]Command),
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*coin.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.State.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, state *coin.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	sess, ok := m.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: now}
		m.sessions[id] = sess
	}
	sess.State = *state
	sess.UpdatedAt = now
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.history, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, *sess)
	}
	slices.SortFunc(out, func(a, b Session) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryStore) LogCommand(_ context.Context, rec Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.history[rec.SessionID] = append(m.history[rec.SessionID], rec)
	return nil
}

func (m *MemoryStore) History(_ context.Context, id string, limit int) ([]Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.history[id]
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Command, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
