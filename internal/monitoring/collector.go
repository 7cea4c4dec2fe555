// Package monitoring periodically summarizes recent accuracy reports and
// raises webhook alerts when data quality degrades.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/resilience"
	"github.com/ranksignal/accuracy-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of scoring accuracy health.
type MetricsSnapshot struct {
	// Report metrics (within lookback window).
	ReportTotal      int     `json:"report_total"`
	ReportAccurate   int     `json:"report_accurate"`
	AccuracyRate     float64 `json:"accuracy_rate"`
	AvgConfidence    float64 `json:"avg_confidence"`
	CriticalIssues   int     `json:"critical_issues"`
	DistinctProjects int     `json:"distinct_projects"`

	// FreshestAgeHours is the age of the newest report in the window.
	// Zero when the window is empty.
	FreshestAgeHours float64 `json:"freshest_age_hours"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers accuracy metrics from the report store.
type Collector struct {
	store store.Store
	retry resilience.RetryConfig

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{
		store: st,
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 200 * time.Millisecond,
			OnRetry:        resilience.RetryLogger("store", "list_reports"),
		},
		nowFunc: time.Now,
	}
}

// Collect gathers a snapshot of accuracy metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.nowFunc().UTC()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	reports, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]model.AccuracyReport, error) {
		return c.store.ListReports(ctx, store.ReportFilter{From: cutoff, Limit: 10000})
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list reports")
	}

	snap.ReportTotal = len(reports)
	projects := make(map[string]struct{})
	var confidenceSum float64
	var newest time.Time

	for i := range reports {
		r := &reports[i]
		if r.IsAccurate {
			snap.ReportAccurate++
		}
		confidenceSum += float64(r.Confidence.Overall)
		snap.CriticalIssues += r.CriticalCount()
		projects[r.ProjectID] = struct{}{}
		if r.CheckedAt.After(newest) {
			newest = r.CheckedAt
		}
	}

	snap.DistinctProjects = len(projects)
	if snap.ReportTotal > 0 {
		snap.AccuracyRate = float64(snap.ReportAccurate) / float64(snap.ReportTotal)
		snap.AvgConfidence = confidenceSum / float64(snap.ReportTotal)
		snap.FreshestAgeHours = now.Sub(newest).Hours()
	}

	return snap, nil
}
