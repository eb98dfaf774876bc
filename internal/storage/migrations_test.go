package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_ReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.Migrate(context.Background()))

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigration2_RecordsHistory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "keywordMappings", `{"xyz":{"category":"Botox","sub":""}}`))
	require.NoError(t, store.Set(ctx, "keywordMappings", `{"xyz":{"category":"Filler","sub":"Face"}}`))

	history, err := store.History(ctx, "keywordMappings")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"xyz":{"category":"Botox","sub":""}}`,
		`{"xyz":{"category":"Filler","sub":"Face"}}`,
	}, history)

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_kv_history_key'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}
