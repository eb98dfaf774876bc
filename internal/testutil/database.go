// Package testutil provides shared fixtures for qflow tests: throwaway
// keyword stores and a fluent builder for service catalogs.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Veraticus/qflow/internal/service"
	"github.com/Veraticus/qflow/internal/storage"
)

// SetupTestDB creates a migrated SQLite store in a temp directory. It is
// closed automatically when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "qflow.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

var _ service.KeyValueStore = (*MemoryKV)(nil)

// MemoryKV is an in-memory service.KeyValueStore. Set fails with SetErr when
// it is non-nil, which lets tests exercise persistence failures.
type MemoryKV struct {
	SetErr error
	data   map[string]string
	sets   int
	mu     sync.Mutex
}

// NewMemoryKV returns an empty store, optionally seeded with key/value pairs.
func NewMemoryKV(seed map[string]string) *MemoryKV {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &MemoryKV{data: data}
}

// Get implements service.KeyValueStore.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements service.KeyValueStore.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	m.sets++
	return nil
}

// Value returns the raw stored document for key.
func (m *MemoryKV) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// Sets counts successful writes.
func (m *MemoryKV) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
