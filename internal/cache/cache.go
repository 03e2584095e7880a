// Package cache is the process-local cache for fetched layers and aggregation
// results. Entries are addressed by a structured key rather than by filename
// convention so cache correctness does not depend on string formatting.
package cache

import (
	"context"
	"fmt"
	"sync"
)

// Key addresses one cache entry.
type Key struct {
	Region     string // region code, e.g. "19"
	Category   string // e.g. "boundary", "osm:hospitals", "aggregate:<hash>"
	Resolution int    // hex resolution the entry was computed at; 0 when not applicable
}

// String returns the canonical form used as the storage key.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Region, k.Category, k.Resolution)
}

// Store is a pluggable cache backend. Put failures indicate an unrecoverable
// local-storage problem and must be surfaced, not swallowed.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Put(ctx context.Context, key Key, value []byte) error
	Close() error
}

// Memory is an in-memory Store, used in tests and as a fallback backend.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key.String()]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Put(_ context.Context, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.entries[key.String()] = v
	return nil
}

func (m *Memory) Close() error { return nil }
