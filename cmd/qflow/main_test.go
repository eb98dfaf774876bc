package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/intake"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
	"github.com/Veraticus/qflow/internal/sheets"
	"github.com/Veraticus/qflow/internal/storage"
	"github.com/Veraticus/qflow/internal/testutil"
)

// setupCommandTest isolates viper and swaps the store factories for fakes.
func setupCommandTest(t *testing.T, store service.RecordStore) *testutil.MemoryKV {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfgFile = ""

	kv := testutil.NewMemoryKV(nil)
	origKV, origStore := newKeyValueStore, newRecordStore
	t.Cleanup(func() {
		newKeyValueStore, newRecordStore = origKV, origStore
	})

	newKeyValueStore = func(context.Context) (service.KeyValueStore, closeFunc, error) {
		return kv, func() error { return nil }, nil
	}
	newRecordStore = func(context.Context) (service.RecordStore, error) {
		if store == nil {
			return nil, common.ErrMissingConfig
		}
		return store, nil
	}
	return kv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testMockStore() *sheets.MockStore {
	store := sheets.NewMockStore()
	store.Catalog = testutil.NewCatalogBuilder().WithFixture(testutil.FixtureMinimal).Build()
	store.Directory = model.BranchDirectory{{Name: "สยาม", Code: "SIAM"}, {Name: "อุบล", Code: "UBN"}}
	return store
}

const pastedChat = "สาขาสยาม 01/03/68\nBotox กราม 2\nขอบคุณค่ะ\n"

func TestVersionCommand(t *testing.T) {
	setupCommandTest(t, nil)

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "qflow dev")
}

func TestParseCommand_JSONWithLocalCatalog(t *testing.T) {
	setupCommandTest(t, nil)
	viper.Set("catalog.services", []map[string]any{{"name": "Botox", "subs": []string{"กราม"}}})
	viper.Set("catalog.branches", []map[string]any{{"name": "สยาม", "code": "SIAM"}})

	out, err := execute(t, pastedChat, "parse", "--json")
	require.NoError(t, err)

	var result intake.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, model.HeaderData{Branch: "SIAM", Date: "2025-03-01"}, result.Header)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Botox", result.Items[0].Program)
	assert.Equal(t, "กราม", result.Items[0].Sub)
	assert.Equal(t, "Botox กราม", result.Items[0].OriginalName)
	assert.Equal(t, 2, result.Items[0].Que)
}

func TestParseCommand_Table(t *testing.T) {
	setupCommandTest(t, testMockStore())

	out, err := execute(t, pastedChat, "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "สยาม (SIAM)")
	assert.Contains(t, out, "2025-03-01")
	assert.Contains(t, out, "Botox กราม")
}

func TestParseCommand_UsesLearnedPhrases(t *testing.T) {
	setupCommandTest(t, testMockStore())

	_, err := execute(t, "", "learn", "ฉีดกรามนิดหน่อย", "Botox", "กราม")
	require.NoError(t, err)

	out, err := execute(t, "ฉีดกรามนิดหน่อย 3\n", "parse", "--json")
	require.NoError(t, err)

	var result intake.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Botox", result.Items[0].Program)
	assert.Equal(t, "กราม", result.Items[0].Sub)
}

func TestLearnAndKeywordsList(t *testing.T) {
	kv := setupCommandTest(t, nil)

	_, err := execute(t, "", "learn", "  Lip Filler ", "Filler", "ปาก")
	require.NoError(t, err)
	assert.Contains(t, kv.Value("keywordMappings"), "lip filler")

	out, err := execute(t, "", "keywords", "list", "--json")
	require.NoError(t, err)

	var keywords []model.KeywordMapping
	require.NoError(t, json.Unmarshal([]byte(out), &keywords))
	assert.Equal(t, []model.KeywordMapping{{Phrase: "lip filler", Category: "Filler", Sub: "ปาก"}}, keywords)
}

func TestLearnCommand_RejectsEmptyProgram(t *testing.T) {
	setupCommandTest(t, nil)

	_, err := execute(t, "", "learn", "phrase", "")
	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr))
}

func TestAliasesCommands(t *testing.T) {
	setupCommandTest(t, nil)

	_, err := execute(t, "", "aliases", "learn", "บางกะปิ", "BKP")
	require.NoError(t, err)

	out, err := execute(t, "", "aliases", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "บางกะปิ")
	assert.Contains(t, out, "BKP")
}

func TestIntakeCommand_SubmitsReviewedItems(t *testing.T) {
	store := testMockStore()
	setupCommandTest(t, store)

	file := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(file, []byte(pastedChat), 0o600))

	// header ok, accept the single line, submit
	out, err := execute(t, "y\na\ny\n", "intake", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 1 row(s) for SIAM on 2025-03-01.")

	records, err := store.Records(context.Background(), service.RecordQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SIAM", records[0].Branch)
	assert.Equal(t, "กราม", records[0].Sub)
	assert.Equal(t, 2, records[0].Que)
}

func TestIntakeCommand_DeclineSubmitsNothing(t *testing.T) {
	store := testMockStore()
	setupCommandTest(t, store)

	file := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(file, []byte(pastedChat), 0o600))

	out, err := execute(t, "y\na\nn\n", "intake", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing was submitted.")
	assert.Equal(t, 0, store.CallCounts["Append"])
}

func TestIntakeCommand_RequiresSheetsUnlessDryRun(t *testing.T) {
	setupCommandTest(t, nil)

	file := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(file, []byte(pastedChat), 0o600))

	_, err := execute(t, "", "intake", file)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestRecordsCommands(t *testing.T) {
	store := testMockStore()
	setupCommandTest(t, store)
	store.Seed(
		model.Record{Date: "2025-03-01", Branch: "SIAM", Program: "Botox", Sub: "กราม", Que: 2},
		model.Record{Date: "2025-03-02", Branch: "UBN", Program: "Botox", Sub: "ริ้วรอย", Que: 4},
	)

	t.Run("list range", func(t *testing.T) {
		out, err := execute(t, "", "records", "list", "--from", "2025-03-02", "--to", "2025-03-02", "--json")
		require.NoError(t, err)

		var records []model.Record
		require.NoError(t, json.Unmarshal([]byte(out), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "UBN", records[0].Branch)
	})

	t.Run("half a range is rejected", func(t *testing.T) {
		_, err := execute(t, "", "records", "list", "--from", "2025-03-02")
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("update quantity", func(t *testing.T) {
		_, err := execute(t, "", "records", "update",
			"--date", "2025-03-01", "--branch", "SIAM", "--program", "Botox", "--sub", "กราม", "--que", "9")
		require.NoError(t, err)

		records, err := store.Records(context.Background(), service.RecordQuery{StartDate: "2025-03-01", EndDate: "2025-03-01"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 9, records[0].Que)
	})

	t.Run("delete needs --yes", func(t *testing.T) {
		_, err := execute(t, "", "records", "delete", "--date", "2025-03-02", "--branch", "UBN")
		require.Error(t, err)
		assert.Equal(t, 0, store.CallCounts["DeleteRecords"])
	})

	t.Run("delete", func(t *testing.T) {
		out, err := execute(t, "", "records", "delete", "--date", "2025-03-02", "--branch", "UBN", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted 1 row(s)")
	})
}

func TestDashboardMissing(t *testing.T) {
	store := testMockStore()
	setupCommandTest(t, store)
	store.Seed(model.Record{Date: "2025-03-01", Branch: "SIAM", Program: "Botox", Que: 1})

	out, err := execute(t, "", "dashboard", "missing", "--date", "2025-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "1 branch(es) missing for 2025-03-01")
	assert.Contains(t, out, "อุบล")
	assert.NotContains(t, out, "สยาม")
}

func TestDashboardDay(t *testing.T) {
	store := testMockStore()
	setupCommandTest(t, store)
	store.Seed(
		model.Record{Date: "2025-03-01", Branch: "SIAM", Program: "Botox", Sub: "กราม", Que: 2},
		model.Record{Date: "2025-03-01", Branch: "SIAM", Program: "Botox", Sub: "ริ้วรอย", Que: 3},
	)

	out, err := execute(t, "", "dashboard", "day", "--date", "2025-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "สยาม (SIAM)")
	assert.Contains(t, out, "Total: 5")
}

func TestExportCommand(t *testing.T) {
	store := testMockStore()
	setupCommandTest(t, store)
	store.Seed(model.Record{Date: "2025-03-01", Branch: "SIAM", Program: "Botox", Sub: "กราม", Que: 2})

	output := filepath.Join(t.TempDir(), "out", "bookings.xlsx")
	out, err := execute(t, "", "export", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 row(s)")
	assert.FileExists(t, output)
}

func TestMigrateCommand(t *testing.T) {
	setupCommandTest(t, nil)
	dbPath := filepath.Join(t.TempDir(), "qflow.db")

	_, err := execute(t, "", "migrate", "--db", dbPath)
	require.NoError(t, err)

	out, err := execute(t, "", "migrate", "--status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "at version 2 (latest 2)")
	assert.NotContains(t, out, "revision(s)")
	assert.Equal(t, 2, storage.ExpectedSchemaVersion)
}

func TestMigrateCommand_StatusListsRevisions(t *testing.T) {
	setupCommandTest(t, nil)
	dbPath := filepath.Join(t.TempDir(), "qflow.db")

	_, err := execute(t, "", "migrate", "--db", dbPath)
	require.NoError(t, err)

	db, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Set(context.Background(), "keywordMappings", `{}`))
	require.NoError(t, db.Set(context.Background(), "keywordMappings", `{"a":"Botox"}`))
	require.NoError(t, db.Close())

	out, err := execute(t, "", "migrate", "--status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "keywordMappings: 2 revision(s)")
}
