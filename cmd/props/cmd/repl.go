package cmd

import (
	"github.com/spf13/cobra"

	"github.com/winterSteve25/props/internal/tui/repl"
	propslog "github.com/winterSteve25/props/pkg/core/log"
)

var replRecovery string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start the interactive Props REPL.

Every line is added to the session and the whole session is checked again;
the AST of the last statement and any diagnostics are shown. Lines that
produce diagnostics are not kept.

Commands:
  :env      show the type environment
  :source   show the session buffer
  :reset    clear the session
  :quit     exit (also Esc, Ctrl+C)`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replRecovery, "recovery", "", "error recovery: token or line (default from config)")
}

func runREPL(cmd *cobra.Command, args []string) error {
	r, err := recovery(replRecovery)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen
	return repl.Run(repl.Config{
		Logger:   propslog.Discard(),
		Recovery: r,
		Color:    appConfig.Render.Color,
	})
}
