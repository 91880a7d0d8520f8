package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is a process local store, used for development and tests.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]string
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, id string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[id]
	return data, ok, nil
}

func (m *Memory) Put(_ context.Context, id, data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = data
	return nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) Close() error { return nil }
