package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/config"
	"github.com/Veraticus/qflow/internal/memory"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
	"github.com/Veraticus/qflow/internal/sheets"
	"github.com/Veraticus/qflow/internal/storage"
)

// Factories are package variables so tests can swap in fakes.
var (
	newKeyValueStore = openKeyValueStore
	newRecordStore   = openRecordStore
)

type closeFunc func() error

func openKeyValueStore(ctx context.Context) (service.KeyValueStore, closeFunc, error) {
	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Backend {
	case config.BackendRedis:
		store, err := storage.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, store.Close, nil
	}
}

// openMemory loads keyword memory from the configured backend.
func openMemory(ctx context.Context) (*memory.Memory, closeFunc, error) {
	kv, closer, err := newKeyValueStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open keyword store: %w", err)
	}

	mem, err := memory.New(ctx, kv)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	return mem, closer, nil
}

func openRecordStore(ctx context.Context) (service.RecordStore, error) {
	if !config.SheetsConfigured() {
		return nil, common.NewUserError(
			"Google Sheets is not configured. Run 'qflow auth sheets' or set sheets.service_account_path",
			common.ErrMissingConfig)
	}

	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, err
	}
	return sheets.NewStore(ctx, *cfg, slog.Default())
}

// loadCatalog prefers the spreadsheet's Config and Branches tabs and falls
// back to catalog.* in the config file when Sheets is not set up.
func loadCatalog(ctx context.Context) (model.ServiceCatalog, model.BranchDirectory, service.RecordStore, error) {
	store, err := newRecordStore(ctx)
	if err != nil {
		slog.Debug("Using local catalog", "reason", err)
		catalog, directory, localErr := config.LoadLocalCatalog()
		return catalog, directory, nil, localErr
	}

	catalog, directory, err := store.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog, directory, store, nil
}

// readInput reads the pasted chat from the file named in args, or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func location() *time.Location {
	tz := viper.GetString("sheets.time_zone")
	if tz == "" {
		tz = sheets.DefaultConfig().TimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("Unknown time zone, using UTC", "time_zone", tz)
		return time.UTC
	}
	return loc
}

// today is the current date in the branches' time zone.
func today() time.Time {
	return time.Now().In(location())
}

func validateDate(flag, value string) error {
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return common.NewUserError(fmt.Sprintf("--%s must look like 2025-03-01", flag), err)
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
