package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/config"
	"github.com/Veraticus/qflow/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the local keyword memory database to the latest
schema version.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "show the current schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return err
	}
	if cfg.Backend != config.BackendSQLite {
		return common.NewUserError("migrations only apply to the sqlite memory backend", common.ErrInvalidConfig)
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Database %s is at version %d (latest %d).", cfg.DatabasePath, current, storage.ExpectedSchemaVersion)))
		if current < storage.ExpectedSchemaVersion {
			return nil
		}

		keys, err := store.Keys(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			history, err := store.History(ctx, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s: %d revision(s)\n", key, len(history))
		}
		return nil
	}

	slog.Info("Running database migrations", "database", cfg.DatabasePath)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess("Database migrations completed successfully!"))
	return nil
}
