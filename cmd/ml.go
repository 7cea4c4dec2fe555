package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranksignal/accuracy-cli/internal/input"
	"github.com/ranksignal/accuracy-cli/internal/mlscore"
	"github.com/ranksignal/accuracy-cli/internal/model"
)

var mlCmd = &cobra.Command{
	Use:   "ml",
	Short: "Score ranking history with the hybrid ML-style scorer",
	Long: `Runs the secondary scoring path over a ranking history file: simulated
inference over extracted features, anomaly detection, time-series pattern
classification, and a hybrid blend with the traditional score.

Examples:
  ml --input rankings.yaml
  ml --input batches.json --batch --format json`,
	RunE: runML,
}

func init() {
	mlCmd.Flags().String("input", "", "JSON or YAML rankings file (required)")
	mlCmd.Flags().Bool("batch", false, "treat the input file as a list of ranking documents")
	mlCmd.Flags().String("format", "table", "output format: table or json")
	_ = mlCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(mlCmd)
}

func runML(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("ml"); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("input")
	batch, _ := cmd.Flags().GetBool("batch")
	format, _ := cmd.Flags().GetString("format")

	scorer := mlscore.NewScorer(cfg.ML.BatchGroupSize, time.Duration(cfg.ML.BatchPauseMS)*time.Millisecond)

	if batch {
		inputs, err := input.LoadMLBatch(path)
		if err != nil {
			return err
		}

		results, err := scorer.CalculateBatch(ctx, inputs)
		if err != nil {
			return eris.Wrap(err, "ml batch")
		}

		if format == "json" {
			return printJSON(results)
		}
		formatMLResults(os.Stdout, results)
		return nil
	}

	in, err := input.LoadMLInput(path)
	if err != nil {
		return err
	}

	result, err := scorer.Calculate(ctx, *in)
	if err != nil {
		return eris.Wrap(err, "ml")
	}

	if format == "json" {
		return printJSON(result)
	}
	formatMLResult(os.Stdout, result)
	return nil
}

// formatMLResult writes a detailed single-document scoring summary to out.
func formatMLResult(out io.Writer, r *model.MLConfidenceResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Hybrid score:\t%.3f (%s)\n", r.HybridScore, r.Level)
	_, _ = fmt.Fprintf(w, "ML score:\t%.3f\n", r.MLScore)
	_, _ = fmt.Fprintf(w, "Traditional score:\t%.3f\n", r.TraditionalScore)
	_, _ = fmt.Fprintf(w, "Anomaly score:\t%.3f\n", r.AnomalyScore)
	_, _ = fmt.Fprintf(w, "Trend:\t%s\n", r.Pattern.Trend)
	_, _ = fmt.Fprintf(w, "Seasonality:\t%.2f\n", r.Pattern.Seasonality)
	_, _ = fmt.Fprintf(w, "Cycle detected:\t%t\n", r.Pattern.CycleDetected)
	_, _ = fmt.Fprintf(w, "Anomalies:\t%d\n", len(r.Pattern.Anomalies))
	_ = w.Flush()

	_, _ = fmt.Fprintln(out, "\nRecommendations:")
	for _, rec := range r.Recommendations {
		_, _ = fmt.Fprintf(out, "  - %s\n", rec)
	}
}

// formatMLResults writes one row per batch document to out.
func formatMLResults(out io.Writer, results []model.MLConfidenceResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tHYBRID\tML\tTRAD\tANOMALY\tTREND\tLEVEL")
	_, _ = fmt.Fprintln(w, "-\t------\t--\t----\t-------\t-----\t-----")

	for i, r := range results {
		_, _ = fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%s\n",
			i,
			r.HybridScore,
			r.MLScore,
			r.TraditionalScore,
			r.AnomalyScore,
			r.Pattern.Trend,
			r.Level,
		)
	}
	_ = w.Flush()
}
