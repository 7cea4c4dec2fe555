package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

var discrepanciesCmd = &cobra.Command{
	Use:   "discrepancies",
	Short: "Detect cross-source discrepancies for an observation",
	Long: `Compares a primary metric observation against comparison points and
classifies every disagreement above the 5% noise floor by severity.

Examples:
  discrepancies --project proj-1 --metric organic_clicks \
    --primary-source search_console --primary-value 1000 \
    --compare analytics=900 --compare moz=400

  discrepancies --input observations.json --format json`,
	RunE: runDiscrepancies,
}

func init() {
	addObservationFlags(discrepanciesCmd)
	discrepanciesCmd.Flags().String("format", "table", "output format: table or json")
	rootCmd.AddCommand(discrepanciesCmd)
}

// observationDiscrepancies pairs an observation identity with its detected
// discrepancies.
type observationDiscrepancies struct {
	ProjectID     string              `json:"project_id"`
	Metric        string              `json:"metric"`
	Discrepancies []model.Discrepancy `json:"discrepancies"`
}

func runDiscrepancies(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	observations, err := observationsFromCmd(cmd)
	if err != nil {
		return err
	}

	eng := scoring.NewEngine(nil, statusProvider())

	results := make([]observationDiscrepancies, 0, len(observations))
	total := 0
	for i, obs := range observations {
		found, err := eng.DetectDiscrepancies(obs.Primary, obs.Compare)
		if err != nil {
			return eris.Wrapf(err, "detect discrepancies for observation %d", i)
		}
		total += len(found)
		results = append(results, observationDiscrepancies{
			ProjectID:     obs.ProjectID,
			Metric:        obs.Metric,
			Discrepancies: found,
		})
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return printJSON(results)
	}

	if total == 0 {
		fmt.Fprintln(os.Stderr, "No discrepancies above the noise floor.")
		return nil
	}
	formatDiscrepancies(os.Stdout, results)
	return nil
}

// formatDiscrepancies writes one row per detected discrepancy to out.
func formatDiscrepancies(out io.Writer, results []observationDiscrepancies) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROJECT\tMETRIC\tSOURCE1\tSOURCE2\tVALUE1\tVALUE2\tVARIANCE\tSEVERITY")
	_, _ = fmt.Fprintln(w, "-------\t------\t-------\t-------\t------\t------\t--------\t--------")

	for _, r := range results {
		for _, d := range r.Discrepancies {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.1f%%\t%s\n",
				r.ProjectID,
				r.Metric,
				d.Source1,
				d.Source2,
				d.Value1,
				d.Value2,
				d.Variance*100,
				d.Severity,
			)
		}
	}
	_ = w.Flush()
}
