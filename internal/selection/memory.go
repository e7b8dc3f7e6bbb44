package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/id"
)

type memoryEntry struct {
	data    []byte
	version Version
}

// MemoryBackend keeps documents in process memory. Each write gets a fresh
// ULID revision.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry)}
}

// Name implements Backend
func (m *MemoryBackend) Name() string {
	return "memory"
}

// Get implements Backend
func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, NoVersion, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, NoVersion, nil
	}
	return append([]byte(nil), entry.data...), entry.version, nil
}

// CompareAndSwap implements Backend
func (m *MemoryBackend) CompareAndSwap(ctx context.Context, key string, expected Version, value []byte) (Version, error) {
	if err := ctx.Err(); err != nil {
		return NoVersion, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.entries[key].version
	if current != expected {
		return current, fmt.Errorf("%w: key %q is at %q, expected %q", ErrVersionMismatch, key, current, expected)
	}

	next := Version(id.NewRevisionID())
	m.entries[key] = memoryEntry{data: append([]byte(nil), value...), version: next}
	return next, nil
}

// Put stores value unconditionally, as an external writer would
func (m *MemoryBackend) Put(key string, value []byte) Version {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := Version(id.NewRevisionID())
	m.entries[key] = memoryEntry{data: append([]byte(nil), value...), version: next}
	return next
}
