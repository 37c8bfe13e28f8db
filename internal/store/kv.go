package store

import (
	"context"
	"sync"
)

// KV is the namespaced key-value boundary every record collection persists
// through. A namespace holds one serialized JSON document (usually an array
// of records). Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the raw document for a namespace. The bool reports
	// whether the namespace exists.
	Get(ctx context.Context, namespace string) ([]byte, bool, error)
	// Put overwrites the namespace document in full.
	Put(ctx context.Context, namespace string, data []byte) error
	// Delete removes the namespace entirely.
	Delete(ctx context.Context, namespace string) error
}

// MemoryKV is an in-memory KV used by tests and the ephemeral store backend.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV constructs an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, namespace string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[namespace]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (m *MemoryKV) Put(_ context.Context, namespace string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[namespace] = stored
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}
