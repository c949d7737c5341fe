package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process. Expired entries are dropped lazily.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	session   Session
	selection string
	expires   time.Time
}

// NewMemoryStore creates a store whose sessions live for ttl after their
// last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[uuid.UUID]memoryEntry{},
	}
}

func (m *MemoryStore) Create(_ context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s := Session{ID: uuid.New(), UpdatedAt: now}
	m.sessions[s.ID] = memoryEntry{session: s, expires: now.Add(m.ttl)}
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(s.ID)
	if !ok {
		return ErrNotFound
	}
	now := m.now()
	s.UpdatedAt = now
	e.session = s
	e.expires = now.Add(m.ttl)
	m.sessions[s.ID] = e
	return nil
}

func (m *MemoryStore) SetSelection(_ context.Context, id uuid.UUID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return ErrNotFound
	}
	e.selection = text
	m.sessions[id] = e
	return nil
}

func (m *MemoryStore) TakeSelection(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return "", ErrNotFound
	}
	text := e.selection
	e.selection = ""
	m.sessions[id] = e
	return text, nil
}

func (m *MemoryStore) Close() error { return nil }

// live must be called with mu held.
func (m *MemoryStore) live(id uuid.UUID) (memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return e, true
}
