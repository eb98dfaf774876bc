package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/dashboard"
	"github.com/Veraticus/qflow/internal/service"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Daily reporting across branches",
	}

	cmd.AddCommand(dashboardMissingCmd())
	cmd.AddCommand(dashboardLeaderboardCmd())
	cmd.AddCommand(dashboardDayCmd())

	return cmd
}

// dateFlag returns --date or today in the branches' time zone.
func dateFlag(cmd *cobra.Command) (string, error) {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		return today().Format(time.DateOnly), nil
	}
	if err := validateDate("date", date); err != nil {
		return "", err
	}
	return date, nil
}

func dashboardMissingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List branches that have not submitted for a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}

			store, err := newRecordStore(ctx)
			if err != nil {
				return err
			}
			_, directory, err := store.LoadCatalog(ctx)
			if err != nil {
				return err
			}
			records, err := store.Records(ctx, service.RecordQuery{StartDate: date, EndDate: date})
			if err != nil {
				return err
			}

			missing := dashboard.MissingBranches(records, directory, date)
			out := cmd.OutOrStdout()
			if len(missing) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Every branch has submitted for %s.", date)))
				return nil
			}

			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d branch(es) missing for %s:", len(missing), date)))
			for _, name := range missing {
				fmt.Fprintf(out, "  %s %s\n", cli.BranchIcon, name)
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "day to check (default today)")
	return cmd
}

func dashboardLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank branches by bookings over recent days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 {
				days = dashboard.DefaultLeaderboardDays
			}

			now := today()
			store, err := newRecordStore(ctx)
			if err != nil {
				return err
			}
			_, directory, err := store.LoadCatalog(ctx)
			if err != nil {
				return err
			}
			records, err := store.Records(ctx, service.RecordQuery{
				StartDate: now.AddDate(0, 0, -days).Format(time.DateOnly),
				EndDate:   now.Format(time.DateOnly),
			})
			if err != nil {
				return err
			}

			board := dashboard.Leaderboard(records, directory, now, days)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Leaderboard, last %d days", days)))
			if len(board) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No bookings in this window."))
				return nil
			}

			rows := make([][]string, len(board))
			for i, b := range board {
				rank := strconv.Itoa(i + 1)
				if i == 0 {
					rank = cli.TrophyIcon
				}
				rows[i] = []string{rank, b.Name, b.Code, strconv.Itoa(b.Total)}
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"#", "Branch", "Code", "Total"}, rows))
			return nil
		},
	}

	cmd.Flags().Int("days", dashboard.DefaultLeaderboardDays, "number of days to include")
	return cmd
}

func dashboardDayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show each branch's bookings for a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}

			store, err := newRecordStore(ctx)
			if err != nil {
				return err
			}
			_, directory, err := store.LoadCatalog(ctx)
			if err != nil {
				return err
			}
			records, err := store.Records(ctx, service.RecordQuery{StartDate: date, EndDate: date})
			if err != nil {
				return err
			}

			groups := dashboard.GroupByBranch(records, directory, date)
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No bookings for %s.", date)))
				return nil
			}

			for _, g := range groups {
				var b strings.Builder
				for _, p := range g.Programs {
					fmt.Fprintf(&b, "  • %s: %d\n", p.Program, p.Total)
				}
				fmt.Fprintf(&b, "\n%s", cli.BoldStyle.Render(fmt.Sprintf("Total: %d", g.Total)))
				fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("%s %s (%s)", cli.BranchIcon, g.Name, g.Code), b.String()))
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "day to show (default today)")
	return cmd
}
