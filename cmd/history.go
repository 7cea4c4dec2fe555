package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent accuracy reports for a project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		project, _ := cmd.Flags().GetString("project")
		metric, _ := cmd.Flags().GetString("metric")
		days, _ := cmd.Flags().GetInt("days")

		eng := scoring.NewEngine(st, statusProvider())
		reports, err := eng.AccuracyHistory(ctx, project, metric, days)
		if err != nil {
			return eris.Wrap(err, "history")
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return printJSON(reports)
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}
		formatReports(os.Stdout, reports)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("project", "", "project identifier (required)")
	historyCmd.Flags().String("metric", "", "restrict to one metric")
	historyCmd.Flags().Int("days", 30, "lookback window in days")
	historyCmd.Flags().String("format", "table", "output format: table or json")
	_ = historyCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(historyCmd)
}
