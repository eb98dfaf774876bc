package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/intake"
	"github.com/Veraticus/qflow/internal/model"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Show what qflow detects in a pasted chat",
		Long: `Parse a pasted chat transcript and print the detected branch, date and
booking lines without submitting anything. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	mem, closer, err := openMemory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	catalog, directory, _, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	result := intake.Build(mem, catalog, directory).Process(text)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return printResult(cmd.OutOrStdout(), result, directory)
}

func printResult(w io.Writer, result intake.Result, directory model.BranchDirectory) error {
	branch := orDash(result.Header.Branch)
	if name, ok := directory.NameFor(result.Header.Branch); ok {
		branch = fmt.Sprintf("%s (%s)", name, result.Header.Branch)
	}

	if _, err := fmt.Fprintf(w, "%s\n%s Branch: %s\n%s Date:   %s\n\n",
		cli.FormatTitle("Detected booking"), cli.BranchIcon, branch, cli.QueueIcon, orDash(result.Header.Date)); err != nil {
		return err
	}

	if len(result.Items) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatWarning("No booking lines were detected."))
		return err
	}

	rows := make([][]string, len(result.Items))
	for i, item := range result.Items {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			item.OriginalName,
			orDash(item.Program),
			orDash(item.Sub),
			strconv.Itoa(item.Que),
		}
	}
	_, err := fmt.Fprintln(w, cli.RenderTable([]string{"#", "Pasted", "Program", "Sub-service", "Que"}, rows))
	return err
}
