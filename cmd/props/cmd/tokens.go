package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/winterSteve25/props/internal/server"
	"github.com/winterSteve25/props/pkg/props/lexer"
	"github.com/winterSteve25/props/pkg/props/token"
)

var (
	tokensFormat    string
	tokensSkipSpace bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream of a source file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokensFormat, "format", "f", "text", "output format: text, json or yaml")
	tokensCmd.Flags().BoolVar(&tokensSkipSpace, "skip-space", false, "omit whitespace and indent tokens")
}

func runTokens(cmd *cobra.Command, args []string) error {
	if err := validFormat(tokensFormat); err != nil {
		return err
	}
	_, source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	items := lexer.Lex(source)
	if tokensSkipSpace {
		kept := items[:0]
		for _, it := range items {
			if it.Kind != token.Whitespace && it.Kind != token.Indent {
				kept = append(kept, it)
			}
		}
		items = kept
	}

	if tokensFormat != "text" {
		return encode(cmd.OutOrStdout(), tokensFormat, server.ExportTokens(items))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tKIND\tTOKEN")
	for _, it := range items {
		fmt.Fprintf(w, "%d:%d\t%s\t%s\n", it.Line, it.Column, it.Kind, it.Token)
	}
	return w.Flush()
}
