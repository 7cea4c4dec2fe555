package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// counts formats report counts with grouping separators for status and
// export summaries.
var counts = message.NewPrinter(language.English)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatReports writes a tabular list of accuracy reports to out. Shared by
// the report and history commands.
func formatReports(out io.Writer, reports []model.AccuracyReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPROJECT\tMETRIC\tOVERALL\tFRESH\tCONS\tRELY\tCOMPL\tDISC\tCRIT\tACCURATE\tCHECKED")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t-------\t-----\t----\t----\t-----\t----\t----\t--------\t-------")

	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%t\t%s\n",
			truncateID(r.ID),
			r.ProjectID,
			r.Metric,
			r.Confidence.Overall,
			r.Confidence.Freshness,
			r.Confidence.Consistency,
			r.Confidence.Reliability,
			r.Confidence.Completeness,
			len(r.Discrepancies),
			r.CriticalCount(),
			r.IsAccurate,
			r.CheckedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
