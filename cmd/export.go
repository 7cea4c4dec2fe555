package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranksignal/accuracy-cli/internal/export"
	"github.com/ranksignal/accuracy-cli/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export accuracy history to an XLSX workbook",
	Long: `Writes recent accuracy reports to a spreadsheet workbook with a detail
sheet and a per-project summary sheet.

Examples:
  export --output accuracy.xlsx
  export --project proj-1 --metric organic_clicks --days 30`,
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
		output, _ := cmd.Flags().GetString("output")

		if days <= 0 {
			return eris.New("--days must be > 0")
		}

		reports, err := st.ListReports(ctx, store.ReportFilter{
			ProjectID: project,
			Metric:    metric,
			From:      time.Now().UTC().AddDate(0, 0, -days),
			Limit:     10000,
		})
		if err != nil {
			return eris.Wrap(err, "export: list reports")
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}

		if err := export.Workbook(reports, output); err != nil {
			return err
		}

		_, _ = counts.Printf("Exported %d reports to %s\n", len(reports), output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("project", "", "restrict to one project")
	exportCmd.Flags().String("metric", "", "restrict to one metric")
	exportCmd.Flags().Int("days", 90, "lookback window in days")
	exportCmd.Flags().String("output", "accuracy.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
