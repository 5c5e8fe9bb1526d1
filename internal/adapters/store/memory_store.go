package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// MemoryStore keeps lists in process memory. Used for tests and demo runs.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string][]json.RawMessage)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]json.RawMessage, error) {
	if key == "" {
		return nil, errors.New("memory store get: key must not be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.lists[key]
	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = slices.Clone(it)
	}
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, items []json.RawMessage) error {
	if key == "" {
		return errors.New("memory store set: key must not be empty")
	}

	cp := make([]json.RawMessage, len(items))
	for i, it := range items {
		cp[i] = slices.Clone(it)
	}

	m.mu.Lock()
	m.lists[key] = cp
	m.mu.Unlock()
	return nil
}
