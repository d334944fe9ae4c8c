package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getcoveredlife/studio/model"
)

// DefaultSessionTTL is how long an idle editor session is retained.
const DefaultSessionTTL = 2 * time.Hour

type sessionEntry struct {
	store    *Store
	lastUsed time.Time
}

// Manager owns the live editor sessions. Each admin editing session maps to
// one Store; idle sessions are evicted after the TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	limit    int
	now      func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSessionTTL overrides the idle-session eviction window.
func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithStoreHistoryLimit sets the undo history bound for new sessions.
func WithStoreHistoryLimit(n int) ManagerOption {
	return func(m *Manager) { m.limit = n }
}

// withClock overrides the time source for tests.
func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty session Manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*sessionEntry),
		ttl:      DefaultSessionTTL,
		limit:    DefaultHistoryLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new session seeded with the given design tokens and returns
// its id and Store.
func (m *Manager) Create(tokens model.DesignTokens) (string, *Store) {
	id := uuid.NewString()
	store := New(tokens, WithHistoryLimit(m.limit))

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{store: store, lastUsed: m.now()}
	m.mu.Unlock()

	return id, store
}

// Get returns the Store for the given session id, refreshing its idle timer.
func (m *Manager) Get(id string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, model.NewSessionNotFoundError(id)
	}
	entry.lastUsed = m.now()
	return entry.store, nil
}

// Close removes a session.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep evicts sessions idle longer than the TTL and returns how many were
// removed. Sessions with unsaved changes are kept for one extra sweep window
// so a slow editor does not silently lose work.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	graceCutoff := m.now().Add(-2 * m.ttl)
	evicted := 0
	for id, entry := range m.sessions {
		stale := entry.lastUsed.Before(cutoff)
		if !stale {
			continue
		}
		if entry.store.Dirty() && entry.lastUsed.After(graceCutoff) {
			continue
		}
		delete(m.sessions, id)
		evicted++
	}
	return evicted
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
