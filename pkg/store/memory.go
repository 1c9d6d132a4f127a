package store

import (
	"context"
	"sync"
)

// MemoryStore implements the core.Store interface using an in-memory map.
// It is safe for concurrent use and never fails.
type MemoryStore struct {
	slots

	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		values: make(map[string]string),
	}
	m.slots = slots{b: m}
	return m
}

func (m *MemoryStore) get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.values[key], nil
}

func (m *MemoryStore) set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) del(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
