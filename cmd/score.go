package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ranksignal/accuracy-cli/internal/input"
	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a confidence score for a metric observation",
	Long: `Scores a primary metric observation against comparison points from other
data sources. The overall confidence blends freshness, cross-source
consistency, source reliability, and integration completeness.

Examples:
  # Score from flags
  score --project proj-1 --metric organic_clicks \
    --primary-source search_console --primary-value 1200 \
    --compare analytics=1150

  # Score observations from a file
  score --input observations.yaml --format json`,
	RunE: runScore,
}

func init() {
	addObservationFlags(scoreCmd)
	scoreCmd.Flags().String("format", "table", "output format: table or json")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("score"); err != nil {
		return err
	}

	observations, err := observationsFromCmd(cmd)
	if err != nil {
		return err
	}

	eng := scoring.NewEngine(nil, statusProvider())

	results := make([]scoredObservation, 0, len(observations))
	for i, obs := range observations {
		score, err := eng.CalculateConfidenceScore(ctx, obs.ProjectID, obs.Metric, obs.Primary, obs.Compare)
		if err != nil {
			return eris.Wrapf(err, "score observation %d", i)
		}
		results = append(results, scoredObservation{
			ProjectID:  obs.ProjectID,
			Metric:     obs.Metric,
			Confidence: *score,
		})
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return printJSON(results)
	}
	formatScores(os.Stdout, results)
	return nil
}

// scoredObservation pairs an observation identity with its confidence score.
type scoredObservation struct {
	ProjectID  string                `json:"project_id"`
	Metric     string                `json:"metric"`
	Confidence model.ConfidenceScore `json:"confidence"`
}

// addObservationFlags registers the shared observation input flags used by
// score, discrepancies, and report.
func addObservationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("input", "", "JSON or YAML observation file (single document or list)")
	f.String("project", "", "project identifier")
	f.String("metric", "", "metric name (e.g. organic_clicks, keyword_position)")
	f.String("primary-source", "", "primary data source (search_console, analytics, ...)")
	f.Float64("primary-value", 0, "primary observed value")
	f.String("primary-time", "", "primary observation time, RFC 3339 (default now)")
	f.StringArray("compare", nil, "comparison point as source=value[@time], repeatable")
}

// observationsFromCmd loads observations from --input when given, otherwise
// builds a single observation from the individual flags.
func observationsFromCmd(cmd *cobra.Command) ([]input.Observation, error) {
	path, _ := cmd.Flags().GetString("input")
	if path != "" {
		return input.LoadObservations(path)
	}

	project, _ := cmd.Flags().GetString("project")
	metric, _ := cmd.Flags().GetString("metric")
	primarySource, _ := cmd.Flags().GetString("primary-source")
	primaryValue, _ := cmd.Flags().GetFloat64("primary-value")
	primaryTime, _ := cmd.Flags().GetString("primary-time")
	compare, _ := cmd.Flags().GetStringArray("compare")

	if project == "" && metric == "" && primarySource == "" {
		return nil, eris.New("provide --input or the --project, --metric, and --primary-* flags")
	}

	ts := time.Now().UTC()
	if primaryTime != "" {
		parsed, err := time.Parse(time.RFC3339, primaryTime)
		if err != nil {
			return nil, eris.Wrap(err, "parse --primary-time")
		}
		ts = parsed
	}

	points, err := parseComparePoints(compare, ts)
	if err != nil {
		return nil, err
	}

	obs := input.Observation{
		ProjectID: project,
		Metric:    metric,
		Primary: model.DataPoint{
			Source:    model.DataSource(primarySource),
			Value:     primaryValue,
			Timestamp: ts,
		},
		Compare: points,
	}
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	return []input.Observation{obs}, nil
}

// parseComparePoints parses repeated --compare flags of the form
// source=value or source=value@2025-06-15T10:00:00Z. Points without an
// explicit time inherit the primary observation time.
func parseComparePoints(specs []string, fallback time.Time) ([]model.DataPoint, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	points := make([]model.DataPoint, 0, len(specs))
	for _, spec := range specs {
		source, rest, ok := strings.Cut(spec, "=")
		if !ok || source == "" {
			return nil, eris.Errorf("invalid --compare %q: want source=value[@time]", spec)
		}

		valuePart, timePart, hasTime := strings.Cut(rest, "@")
		value, err := strconv.ParseFloat(valuePart, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid --compare %q: bad value", spec)
		}

		ts := fallback
		if hasTime {
			ts, err = time.Parse(time.RFC3339, timePart)
			if err != nil {
				return nil, eris.Wrapf(err, "invalid --compare %q: bad time", spec)
			}
		}

		points = append(points, model.DataPoint{
			Source:    model.DataSource(source),
			Value:     value,
			Timestamp: ts,
		})
	}
	return points, nil
}

// formatScores writes a tabular confidence breakdown to out.
func formatScores(out io.Writer, results []scoredObservation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROJECT\tMETRIC\tOVERALL\tFRESH\tCONS\tRELY\tCOMPL")
	_, _ = fmt.Fprintln(w, "-------\t------\t-------\t-----\t----\t----\t-----")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			r.ProjectID,
			r.Metric,
			r.Confidence.Overall,
			r.Confidence.Freshness,
			r.Confidence.Consistency,
			r.Confidence.Reliability,
			r.Confidence.Completeness,
		)
	}
	_ = w.Flush()
}
