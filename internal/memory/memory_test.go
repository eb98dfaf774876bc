package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/storage"
	"github.com/Veraticus/qflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestNew_EmptyStore(t *testing.T) {
	mem, err := New(context.Background(), testutil.NewMemoryKV(nil))
	require.NoError(t, err)
	assert.Empty(t, mem.Keywords())
	assert.Empty(t, mem.Aliases())

	_, ok := mem.Lookup("botox")
	assert.False(t, ok)
}

func TestNew_CorruptDocument(t *testing.T) {
	kv := testutil.NewMemoryKV(map[string]string{KeywordMappingsKey: `{"botox": 12}`})

	_, err := New(context.Background(), kv)
	assert.Error(t, err)
}

func TestLookup_DecodesBothRepresentations(t *testing.T) {
	kv := testutil.NewMemoryKV(map[string]string{
		KeywordMappingsKey: `{"old phrase":"Filler","new phrase":{"category":"Botox","sub":"กราม"},"no sub":{"category":"Hifu"}}`,
	})

	mem, err := New(context.Background(), kv)
	require.NoError(t, err)

	tests := []struct {
		name   string
		phrase string
		want   model.Classification
	}{
		{"legacy string", "old phrase", model.Classification{Program: "Filler"}},
		{"structured", "new phrase", model.Classification{Program: "Botox", Sub: "กราม"}},
		{"missing sub", "no sub", model.Classification{Program: "Hifu"}},
		{"normalized lookup", "  NEW Phrase ", model.Classification{Program: "Botox", Sub: "กราม"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mem.Lookup(tt.phrase)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLearn_OverwritesAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV(nil)
	mem, err := New(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, mem.Learn(ctx, "xyz", "Botox", ""))
	require.NoError(t, mem.Learn(ctx, "XYZ ", "Filler", "Face"))

	got, ok := mem.Lookup("xyz")
	require.True(t, ok)
	assert.Equal(t, model.Classification{Program: "Filler", Sub: "Face"}, got)
	assert.JSONEq(t, `{"xyz":{"category":"Filler","sub":"Face"}}`, kv.Value(KeywordMappingsKey))

	// A fresh instance sees the persisted value
	reloaded, err := New(ctx, kv)
	require.NoError(t, err)
	got, ok = reloaded.Lookup("xyz")
	require.True(t, ok)
	assert.Equal(t, model.Classification{Program: "Filler", Sub: "Face"}, got)
}

func TestLearn_IgnoresEmptyInput(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV(nil)
	mem, err := New(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, mem.Learn(ctx, "   ", "Botox", ""))
	require.NoError(t, mem.Learn(ctx, "botox", "", "กราม"))

	assert.Empty(t, mem.Keywords())
	assert.Zero(t, kv.Sets())
}

func TestLearn_KeepsLegacyValuesOnRewrite(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV(map[string]string{KeywordMappingsKey: `{"old":"Filler"}`})

	mem, err := New(ctx, kv)
	require.NoError(t, err)
	require.NoError(t, mem.Learn(ctx, "new", "Botox", "กราม"))

	assert.JSONEq(t, `{"old":"Filler","new":{"category":"Botox","sub":"กราม"}}`, kv.Value(KeywordMappingsKey))

	keywords := mem.Keywords()
	require.Len(t, keywords, 2)
	assert.Equal(t, "new", keywords[0].Phrase)
	assert.False(t, keywords[0].Legacy)
	assert.Equal(t, "old", keywords[1].Phrase)
	assert.True(t, keywords[1].Legacy)
}

func TestLearn_RollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV(nil)
	mem, err := New(ctx, kv)
	require.NoError(t, err)
	require.NoError(t, mem.Learn(ctx, "xyz", "Botox", ""))

	kv.SetErr = errors.New("disk full")
	err = mem.Learn(ctx, "xyz", "Filler", "Face")
	require.Error(t, err)

	got, ok := mem.Lookup("xyz")
	require.True(t, ok)
	assert.Equal(t, model.Classification{Program: "Botox"}, got)

	err = mem.Learn(ctx, "abc", "Filler", "")
	require.Error(t, err)
	_, ok = mem.Lookup("abc")
	assert.False(t, ok)
}

func TestBranchAlias(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV(nil)
	mem, err := New(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, mem.LearnBranchAlias(ctx, "พระราม 9", "RM9"))
	require.NoError(t, mem.LearnBranchAlias(ctx, "Rama", "RMA"))
	require.NoError(t, mem.LearnBranchAlias(ctx, "พระราม 9", "R9"))

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{"thai alias", "สาขาพระราม 9 วันนี้", "R9", true},
		{"case insensitive", "RAMA branch", "RMA", true},
		{"first learned wins", "rama พระราม 9", "R9", true},
		{"no match", "สาขาอื่น", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := mem.BranchAlias(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}

	assert.JSONEq(t, `[{"alias":"พระราม 9","code":"R9"},{"alias":"rama","code":"RMA"}]`, kv.Value(BranchAliasesKey))
}

func TestMemory_PersistsThroughSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "qflow.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	mem, err := New(ctx, store)
	require.NoError(t, err)
	require.NoError(t, mem.Learn(ctx, "ฉีดกราม", "Botox", "กราม"))
	require.NoError(t, mem.LearnBranchAlias(ctx, "สยาม", "SIAM"))
	require.NoError(t, store.Close())

	reopened, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	mem, err = New(ctx, reopened)
	require.NoError(t, err)

	got, ok := mem.Lookup("ฉีดกราม")
	require.True(t, ok)
	assert.Equal(t, model.Classification{Program: "Botox", Sub: "กราม"}, got)

	code, ok := mem.BranchAlias("สาขาสยาม")
	require.True(t, ok)
	assert.Equal(t, "SIAM", code)
}
