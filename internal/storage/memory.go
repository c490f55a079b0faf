package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used when no Redis address is set.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, visitorID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[storageKey(visitorID, key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, visitorID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[storageKey(visitorID, key)] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, visitorID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, storageKey(visitorID, key))
	return nil
}
