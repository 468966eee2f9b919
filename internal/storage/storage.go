// Package storage provides local key-value stores for saved games.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNotFound is returned by Get when a key has never been written or was
// cleared.
var ErrNotFound = errors.New("key not found")

// KV is a flat local key-value store. Writes are synchronous: a nil error
// from Set means the value is durable for the backend.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the store for a backend name.
func Open(backend, saveDir, sqlitePath string) (KV, error) {
	switch backend {
	case "file":
		return NewFileStore(saveDir)
	case "sqlite":
		return OpenSQLite(sqlitePath)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

// MemoryStore keeps values in a map. It is used by tests and playtests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = slices.Clone(value)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
