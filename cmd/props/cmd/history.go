package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/winterSteve25/props/internal/server"
	"github.com/winterSteve25/props/internal/store"
	propserr "github.com/winterSteve25/props/pkg/core/error"
)

var (
	historyLimit  int
	historyFailed bool
	historySource string
	historyFormat string
	pruneOlder    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `History lists recent parse runs recorded by the CLI and the service.
Recording is enabled with [history] enabled = true.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyStatsCmd, historyPruneCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only runs with diagnostics")
	historyCmd.Flags().StringVar(&historySource, "source", "", "only runs of this source name")
	historyCmd.PersistentFlags().StringVarP(&historyFormat, "format", "f", "text", "output format: text, json or yaml")
	historyPruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 30*24*time.Hour, "delete runs older than this")
}

func openHistory() (store.HistoryStore, error) {
	if err := validFormat(historyFormat); err != nil {
		return nil, err
	}
	history, err := server.OpenHistory(appConfig.History.Enabled, appConfig.History.Path)
	if err != nil {
		return nil, err
	}
	if history == nil {
		return nil, propserr.New("history is disabled; set [history] enabled = true").
			WithCode(propserr.CodeInvalidConfig).
			WithOperation("cli.history")
	}
	return history, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.List(cmd.Context(), store.RunFilter{
		SourceName: historySource,
		OnlyFailed: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}

	if historyFormat != "text" {
		return encode(cmd.OutOrStdout(), historyFormat, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tCREATED\tNODES\tDIAGS\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%dms\n",
			run.ID[:8], run.SourceName, run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.NodeCount, run.DiagCount, run.DurationMs)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	run, err := history.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if historyFormat != "text" {
		return encode(cmd.OutOrStdout(), historyFormat, run)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:      %s\n", run.ID)
	fmt.Fprintf(out, "Source:   %s\n", run.SourceName)
	fmt.Fprintf(out, "Created:  %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Nodes:    %d\n", run.NodeCount)
	fmt.Fprintf(out, "Duration: %dms\n", run.DurationMs)

	if len(run.Types) > 0 {
		fmt.Fprintln(out, "Types:")
		names := make([]string, 0, len(run.Types))
		for name := range run.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s: %s\n", name, run.Types[name])
		}
	}
	if len(run.Diagnostics) > 0 {
		fmt.Fprintln(out, "Diagnostics:")
		for _, d := range run.Diagnostics {
			fmt.Fprintf(out, "  %d:%d %s: %s\n", d.Line, d.Column, d.Kind, d.Message)
		}
	}
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	stats, err := history.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if historyFormat != "text" {
		return encode(cmd.OutOrStdout(), historyFormat, stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total runs:  %v\n", stats["total_runs"])
	fmt.Fprintf(out, "Failed runs: %v\n", stats["failed_runs"])
	if byKind, ok := stats["diagnostics_by_kind"].(map[string]int64); ok && len(byKind) > 0 {
		fmt.Fprintln(out, "Diagnostics by kind:")
		kinds := make([]string, 0, len(byKind))
		for kind := range byKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(out, "  %-16s %d\n", kind, byKind[kind])
		}
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	n, err := history.Prune(cmd.Context(), pruneOlder)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs\n", n)
	return nil
}
