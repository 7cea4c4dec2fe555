package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize recent accuracy for a project",
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

		eng := scoring.NewEngine(st, statusProvider())
		status, err := eng.ProjectStatus(ctx, project)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return printJSON(status)
		}
		formatStatus(os.Stdout, status)
		return nil
	},
}

func init() {
	statusCmd.Flags().String("project", "", "project identifier (required)")
	statusCmd.Flags().String("format", "table", "output format: table or json")
	_ = statusCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(statusCmd)
}

// formatStatus writes a project accuracy summary to out.
func formatStatus(out io.Writer, s *model.ProjectAccuracyStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Project:\t%s\n", s.ProjectID)
	_, _ = fmt.Fprintf(w, "Window:\t%d days\n", s.WindowDays)
	_, _ = fmt.Fprintf(w, "Reports:\t%s\n", counts.Sprintf("%d", s.ReportCount))
	_, _ = fmt.Fprintf(w, "Accuracy:\t%.1f%%\n", s.OverallAccuracy)
	_, _ = fmt.Fprintf(w, "Avg confidence:\t%.1f\n", s.AverageConfidence)
	_, _ = fmt.Fprintf(w, "Critical issues:\t%s\n", counts.Sprintf("%d", s.CriticalIssues))
	_, _ = fmt.Fprintf(w, "Data freshness:\t%d\n", s.DataFreshness)
	if !s.LastChecked.IsZero() {
		_, _ = fmt.Fprintf(w, "Last checked:\t%s\n", s.LastChecked.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}
