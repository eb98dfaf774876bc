package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/intake"
)

func intakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intake <file>",
		Short: "Review a pasted chat and submit it",
		Long: `Parse a pasted chat transcript, walk through every detected line to
confirm or correct it, then append the confirmed bookings to the spreadsheet.

Corrections to program or sub-service are remembered, so the same wording is
classified correctly next time. Reads the chat from the file argument, since
stdin is used for answering prompts.`,
		Args: cobra.ExactArgs(1),
		RunE: runIntake,
	}

	cmd.Flags().Bool("dry-run", false, "review without submitting")

	return cmd
}

func runIntake(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	interrupts := cli.NewInterruptHandler(cmd.OutOrStdout())
	ctx := interrupts.HandleInterrupts(cmd.Context(), true)

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	mem, closer, err := openMemory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	catalog, directory, store, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	if store == nil && !dryRun {
		return common.NewUserError("Google Sheets is not configured; use --dry-run to review without submitting", common.ErrMissingConfig)
	}

	session := intake.NewSession(mem)
	session.Load(intake.Build(mem, catalog, directory).Process(text))

	reviewer := cli.NewReviewer(cmd.InOrStdin(), cmd.OutOrStdout(), catalog, directory)
	if err := reviewer.ReviewHeader(ctx, session); err != nil {
		return err
	}
	if err := reviewer.Review(ctx, session); err != nil {
		return err
	}
	reviewer.ShowCompletion()

	if session.Len() == 0 {
		return nil
	}

	ok, err := reviewer.ConfirmSubmit(ctx, session)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing was submitted."))
		return nil
	}

	header := session.Header()
	submission := session.Submission(header.Date, header.Branch)
	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Dry run: %d row(s) would be appended.", len(submission.Items))))
		return nil
	}

	if err := store.Append(ctx, submission); err != nil {
		return fmt.Errorf("failed to submit bookings: %w", err)
	}

	slog.Info("Submitted bookings", "branch", header.Branch, "date", header.Date, "rows", len(submission.Items))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Submitted %d row(s) for %s on %s.", len(submission.Items), header.Branch, header.Date)))
	return nil
}
