package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate and persist accuracy reports",
	Long: `Scores observations like the score command, additionally classifying
discrepancies and deciding an accuracy verdict, and persists the resulting
reports to the configured store. Persistence is best-effort: a store failure
is logged and the report is still printed.

Examples:
  report --project proj-1 --metric organic_clicks \
    --primary-source search_console --primary-value 1200 \
    --compare analytics=1150

  # Score a whole file and persist the reports in one batch
  report --input observations.yaml --migrate`,
	RunE: runReport,
}

func init() {
	addObservationFlags(reportCmd)
	reportCmd.Flags().String("format", "table", "output format: table or json")
	reportCmd.Flags().Bool("migrate", false, "run store migrations before writing")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("store"); err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "report"))

	observations, err := observationsFromCmd(cmd)
	if err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "report: migrate")
		}
	}

	provider := statusProvider()

	var reports []model.AccuracyReport
	if len(observations) == 1 {
		// Single observation goes through the engine's own guarded persist.
		eng := scoring.NewEngine(st, provider)
		obs := observations[0]
		rep, err := eng.GenerateAccuracyReport(ctx, obs.ProjectID, obs.Metric, obs.Primary, obs.Compare)
		if err != nil {
			return eris.Wrap(err, "generate report")
		}
		reports = append(reports, *rep)
	} else {
		// A file of observations is scored compute-only and persisted in a
		// single batch write.
		eng := scoring.NewEngine(nil, provider)
		for i, obs := range observations {
			rep, err := eng.GenerateAccuracyReport(ctx, obs.ProjectID, obs.Metric, obs.Primary, obs.Compare)
			if err != nil {
				return eris.Wrapf(err, "generate report for observation %d", i)
			}
			reports = append(reports, *rep)
		}

		inserted, err := st.CreateReports(ctx, reports)
		if err != nil {
			log.Warn("reports not persisted", zap.Int("count", len(reports)), zap.Error(err))
		} else {
			log.Info("reports persisted", zap.Int("inserted", inserted))
		}
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return printJSON(reports)
	}
	formatReports(os.Stdout, reports)
	return nil
}
