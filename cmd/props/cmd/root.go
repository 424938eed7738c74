package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/winterSteve25/props/pkg/core/config"
	propslog "github.com/winterSteve25/props/pkg/core/log"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	appConfig *config.Config
	logger    *propslog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "props",
	Short: "Props - expression language front end",
	Long: `props lexes, parses and type checks Props source.

Commands:
  parse    - print the AST of a file
  check    - report diagnostics only
  tokens   - print the token stream
  repl     - interactive session
  serve    - gRPC and WebSocket parse service
  history  - recorded runs`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $PROPS_CONFIG, ./props.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "plain diagnostic output")
}

// setup loads the configuration and installs the process logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	if verbose {
		appConfig.Log.Level = "debug"
	}
	if noColor {
		appConfig.Render.Color = false
	}

	logger = appConfig.Logger().WithOutput(cmd.ErrOrStderr())
	propslog.SetDefault(logger)
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
