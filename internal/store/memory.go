// internal/store/memory.go
//
// In-memory implementation of Backend.
// Used by tests and by deployments where progress may be lost on restart.
//
// Characteristics:
//   - Stores values keyed by string in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// Memory is a map-based Backend.
type Memory struct {
	mu     sync.RWMutex      // guards values
	values map[string]string // keyed by storage key
}

// NewMemory constructs an empty in-memory Backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Read looks up key.
func (m *Memory) Read(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Write adds or replaces the value under key.
func (m *Memory) Write(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
