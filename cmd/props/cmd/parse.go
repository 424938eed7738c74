package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/winterSteve25/props/internal/server"
	coregrpc "github.com/winterSteve25/props/pkg/core/grpc"
)

var (
	parseFormat   string
	parseRecovery string
	parseRemote   string
	parseTimeout  time.Duration
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file and print its AST",
	Long: `Parse lexes, parses and type checks a Props source file and prints
the resulting AST. Without a file, or with "-", the source is read from stdin.

Diagnostics are rendered to stderr; any diagnostic makes the command fail.

Examples:
  props parse main.props
  props parse --format json main.props
  echo 'x: I32 = 1' | props parse --format yaml
  props parse --remote 127.0.0.1:9470 main.props`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "text", "output format: text, json or yaml")
	parseCmd.Flags().StringVar(&parseRecovery, "recovery", "", "error recovery: token or line (default from config)")
	parseCmd.Flags().StringVar(&parseRemote, "remote", "", "parse on a props service at this gRPC address")
	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", 10*time.Second, "timeout for --remote")
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := validFormat(parseFormat); err != nil {
		return err
	}
	name, source, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	if parseRemote != "" {
		return runRemoteParse(cmd, name, source)
	}

	unit, err := runLocal(cmd, name, source, parseRecovery)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseFormat == "text" {
		for _, node := range unit.Nodes {
			fmt.Fprintln(out, node.String())
		}
	} else if err := encode(out, parseFormat, unit.Export()); err != nil {
		return err
	}
	return unit.Diagnostics.Err()
}

func runRemoteParse(cmd *cobra.Command, name, source string) error {
	conn, err := coregrpc.DialSimple(parseRemote)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), parseTimeout)
	defer cancel()

	result, err := server.NewPropsClient(conn).Parse(ctx, name, source)
	if err != nil {
		return err
	}

	diags, _ := result["diagnostics"].([]interface{})
	for _, d := range diags {
		if m, ok := d.(map[string]interface{}); ok {
			fmt.Fprint(cmd.ErrOrStderr(), m["rendered"])
		}
	}

	out := cmd.OutOrStdout()
	if parseFormat == "text" {
		nodes, _ := result["ast"].([]interface{})
		for _, node := range nodes {
			line, err := json.Marshal(node)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(line))
		}
	} else if err := encode(out, parseFormat, result); err != nil {
		return err
	}
	return diagnosticsErr(len(diags))
}
