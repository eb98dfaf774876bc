package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
	"github.com/Veraticus/qflow/internal/sheets"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Work with submitted booking rows",
	}

	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsUpdateCmd())
	cmd.AddCommand(recordsDeleteCmd())

	return cmd
}

// addRangeFlags registers --from, --to and --limit.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last date to include (YYYY-MM-DD)")
	cmd.Flags().Int("limit", sheets.DefaultRecordLimit, "number of most recent rows when no date range is given")
}

func rangeQuery(cmd *cobra.Command) (service.RecordQuery, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	limit, _ := cmd.Flags().GetInt("limit")

	if (from == "") != (to == "") {
		return service.RecordQuery{}, common.NewUserError("--from and --to must be used together", common.ErrInvalidConfig)
	}
	if from != "" {
		if err := validateDate("from", from); err != nil {
			return service.RecordQuery{}, err
		}
		if err := validateDate("to", to); err != nil {
			return service.RecordQuery{}, err
		}
	}

	return service.RecordQuery{StartDate: from, EndDate: to, Limit: limit}, nil
}

func fetchRecords(ctx context.Context, cmd *cobra.Command) ([]model.Record, error) {
	query, err := rangeQuery(cmd)
	if err != nil {
		return nil, err
	}

	store, err := newRecordStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.Records(ctx, query)
}

func recordsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List booking rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := fetchRecords(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}

	addRangeFlags(cmd)
	cmd.Flags().Bool("json", false, "print as JSON")

	return cmd
}

func printRecords(w io.Writer, records []model.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No records found."))
		return err
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.Date, r.Branch, r.Program, orDash(r.Sub), strconv.Itoa(r.Que)}
	}
	_, err := fmt.Fprintln(w, cli.RenderTable([]string{"Day", "Branch", "Program", "Sub-service", "Que"}, rows))
	return err
}

func recordsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the quantity of a booking row",
		Long: `Change the quantity of the first row matching date, branch, program and
sub-service.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			key := service.RecordKey{}
			key.Date, _ = cmd.Flags().GetString("date")
			key.Branch, _ = cmd.Flags().GetString("branch")
			key.Program, _ = cmd.Flags().GetString("program")
			key.Sub, _ = cmd.Flags().GetString("sub")
			que, _ := cmd.Flags().GetInt("que")

			if err := validateDate("date", key.Date); err != nil {
				return err
			}
			if que < 1 {
				return common.NewUserError("--que must be at least 1", common.ErrInvalidQuantity)
			}

			store, err := newRecordStore(ctx)
			if err != nil {
				return err
			}
			if err := store.UpdateQue(ctx, key, que); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s %s %s to %d.", key.Date, key.Branch, key.Program, que)))
			return nil
		},
	}

	cmd.Flags().String("date", "", "booking date (YYYY-MM-DD)")
	cmd.Flags().String("branch", "", "branch code")
	cmd.Flags().String("program", "", "program")
	cmd.Flags().String("sub", "", "sub-service")
	cmd.Flags().Int("que", 0, "new quantity")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("program")
	_ = cmd.MarkFlagRequired("que")

	return cmd
}

func recordsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every row of a branch for a day",
		Long: `Delete every booking row for the given date and branch, typically before
resubmitting a corrected paste.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			date, _ := cmd.Flags().GetString("date")
			branch, _ := cmd.Flags().GetString("branch")
			yes, _ := cmd.Flags().GetBool("yes")

			if err := validateDate("date", date); err != nil {
				return err
			}
			if !yes {
				return common.NewUserError(fmt.Sprintf("refusing to delete %s rows for %s without --yes", branch, date), common.ErrInvalidConfig)
			}

			store, err := newRecordStore(ctx)
			if err != nil {
				return err
			}
			n, err := store.DeleteRecords(ctx, date, branch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d row(s) for %s on %s.", n, branch, date)))
			return nil
		},
	}

	cmd.Flags().String("date", "", "booking date (YYYY-MM-DD)")
	cmd.Flags().String("branch", "", "branch code")
	cmd.Flags().Bool("yes", false, "confirm the deletion")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("branch")

	return cmd
}
