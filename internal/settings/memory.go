package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings for the lifetime of the process.
type MemoryStore struct {
	keyed
	m *memoryKV
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	m := &memoryKV{values: map[string]string{}}
	return &MemoryStore{keyed: keyed{m}, m: m}
}

func (s *MemoryStore) Close() error { return nil }

type memoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func (m *memoryKV) get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *memoryKV) set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
