package store

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps the encoded list in process memory
type Memory struct {
	mu      sync.RWMutex
	encoded []string
	saves   int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, encoded []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.encoded = slices.Clone(encoded)
	m.saves++
	return nil
}

func (m *Memory) Load(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.encoded == nil {
		return []string{}, nil
	}
	return slices.Clone(m.encoded), nil
}

// Saves returns how many times Save was called
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
