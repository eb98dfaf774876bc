package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/qflow/internal/cli"
	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/memory"
)

func learnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <phrase> <program> [sub-service]",
		Short: "Teach qflow how to classify a phrase",
		Long: `Remember that a pasted phrase always means the given program and
sub-service. Learned phrases win over catalog and keyword matching.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sub := ""
			if len(args) == 3 {
				sub = args[2]
			}
			if memory.Normalize(args[0]) == "" || args[1] == "" {
				return common.NewUserError("phrase and program must not be empty", common.ErrInvalidConfig)
			}

			mem, closer, err := openMemory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			if err := mem.Learn(ctx, args[0], args[1], sub); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q → %s / %s", memory.Normalize(args[0]), args[1], orDash(sub))))
			return nil
		},
	}
}

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Inspect learned phrases",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List learned phrases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			mem, closer, err := openMemory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			keywords := mem.Keywords()

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(keywords)
			}

			if len(keywords) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No phrases learned yet."))
				return nil
			}

			rows := make([][]string, len(keywords))
			for i, k := range keywords {
				rows[i] = []string{k.Phrase, k.Category, orDash(k.Sub)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Phrase", "Program", "Sub-service"}, rows))
			return nil
		},
	}
	list.Flags().Bool("json", false, "print as JSON")

	cmd.AddCommand(list)
	return cmd
}

func aliasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Manage learned branch nicknames",
	}

	learn := &cobra.Command{
		Use:   "learn <alias> <branch-code>",
		Short: "Teach qflow a nickname for a branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if memory.Normalize(args[0]) == "" || args[1] == "" {
				return common.NewUserError("alias and branch code must not be empty", common.ErrInvalidConfig)
			}

			mem, closer, err := openMemory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			if err := mem.LearnBranchAlias(ctx, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q → %s", memory.Normalize(args[0]), args[1])))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List learned branch nicknames",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			mem, closer, err := openMemory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			aliases := mem.Aliases()
			if len(aliases) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No branch nicknames learned yet."))
				return nil
			}

			rows := make([][]string, len(aliases))
			for i, a := range aliases {
				rows[i] = []string{a.Alias, a.Code}
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Alias", "Branch"}, rows))
			return nil
		},
	}

	cmd.AddCommand(learn, list)
	return cmd
}
