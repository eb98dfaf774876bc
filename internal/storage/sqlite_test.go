package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	store, err := NewSQLiteStorage("  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyString)
	assert.Nil(t, store)
}

func TestSQLiteStorage_GetMissingKey(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	value, found, err := store.Get(context.Background(), "keywordMappings")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestSQLiteStorage_SetAndGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "keywordMappings", `{"botox":"Botox"}`))

	value, found, err := store.Get(ctx, "keywordMappings")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"botox":"Botox"}`, value)

	// Last write wins
	require.NoError(t, store.Set(ctx, "keywordMappings", `{"botox":{"category":"Botox","sub":"กราม"}}`))

	value, found, err = store.Get(ctx, "keywordMappings")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"botox":{"category":"Botox","sub":"กราม"}}`, value)
}

func TestSQLiteStorage_ValidatesKeys(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, _, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)

	err = store.Set(ctx, " ", "value")
	assert.ErrorIs(t, err, ErrEmptyString)

	//nolint:staticcheck // testing nil context handling
	err = store.Set(nil, "key", "value")
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "qflow.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Set(ctx, "branchAliases", `[{"alias":"พระราม 9","code":"RM9"}]`))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	value, found, err := reopened.Get(ctx, "branchAliases")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"alias":"พระราม 9","code":"RM9"}]`, value)
}

func TestSQLiteStorage_Keys(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "keywordMappings", "{}"))
	require.NoError(t, store.Set(ctx, "branchAliases", "[]"))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"branchAliases", "keywordMappings"}, keys)
}
