package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/config"
	"github.com/Veraticus/qflow/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export booking rows to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := fetchRecords(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			output = config.ExpandPath(output)
			if err := os.MkdirAll(filepath.Dir(output), 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			f, err := os.Create(output) //nolint:gosec // path chosen by the user
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := export.WriteXLSX(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}

			slog.Info("Exported records", "path", output, "rows", len(records))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d row(s) to %s", len(records), output)))
			return nil
		},
	}

	addRangeFlags(cmd)
	cmd.Flags().StringP("output", "o", "bookings.xlsx", "workbook to write")

	return cmd
}
