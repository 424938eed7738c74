package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkRecovery string

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Report diagnostics without printing the AST",
	Long: `Check runs every file through the parser, typer and checker and
prints one summary line per file. Rendered diagnostics go to stderr.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkRecovery, "recovery", "", "error recovery: token or line (default from config)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}

	var firstErr error
	failed := 0
	for _, arg := range args {
		name, source, err := readSource(cmd, []string{arg})
		if err != nil {
			return err
		}
		unit, err := runLocal(cmd, name, source, checkRecovery)
		if err != nil {
			return err
		}

		if n := len(unit.Diagnostics); n > 0 {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d diagnostics\n", name, n)
			if firstErr == nil {
				firstErr = unit.Diagnostics.Err()
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d statements)\n", name, len(unit.Nodes))
		}
	}

	if failed > 1 {
		return fmt.Errorf("%d of %d files failed: %w", failed, len(args), firstErr)
	}
	return firstErr
}
