package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// MemorySlots keeps slots in process memory. It backs tests and ephemeral
// sessions.
type MemorySlots struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// FailWrites makes every Set and Delete fail, simulating a full or
	// unavailable store.
	FailWrites bool
}

// NewMemorySlots creates an empty in-memory store.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{data: make(map[string][]byte)}
}

func (m *MemorySlots) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySlots) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites || m.closed {
		return fmt.Errorf("write slot %s: %w", key, models.ErrPersistenceUnavailable)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemorySlots) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites || m.closed {
		return fmt.Errorf("delete slot %s: %w", key, models.ErrPersistenceUnavailable)
	}
	delete(m.data, key)
	return nil
}

func (m *MemorySlots) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
