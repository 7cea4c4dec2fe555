package model

import "time"

// ConfidenceScore holds the four component scores and their weighted
// overall, each on [0,100]. Overall is always derived from the other four;
// it carries no independent state.
type ConfidenceScore struct {
	Overall      int `json:"overall"`
	Freshness    int `json:"freshness"`
	Consistency  int `json:"consistency"`
	Reliability  int `json:"reliability"`
	Completeness int `json:"completeness"`
}

// Severity classifies the magnitude of a cross-source discrepancy.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the four severity tiers.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Discrepancy records a cross-source disagreement above the noise floor.
// Variance is the relative absolute difference between the two values, not
// statistical variance.
type Discrepancy struct {
	Source1     DataSource `json:"source1"`
	Source2     DataSource `json:"source2"`
	Value1      float64    `json:"value1"`
	Value2      float64    `json:"value2"`
	Variance    float64    `json:"variance"`
	Severity    Severity   `json:"severity"`
	Explanation string     `json:"explanation"`
}

// AccuracyReport is a persisted accuracy verdict for one metric check.
// Reports are immutable once built; a new check is a new report, never an
// update of an old one.
type AccuracyReport struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	Metric          string          `json:"metric"`
	PrimarySource   DataSource      `json:"primary_source"`
	PrimaryValue    float64         `json:"primary_value"`
	SecondaryValues []SourceValue   `json:"secondary_values,omitempty"`
	Confidence      ConfidenceScore `json:"confidence"`
	Discrepancies   []Discrepancy   `json:"discrepancies,omitempty"`
	IsAccurate      bool            `json:"is_accurate"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// CriticalCount returns the number of critical discrepancies on the report.
func (r AccuracyReport) CriticalCount() int {
	n := 0
	for _, d := range r.Discrepancies {
		if d.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// ProjectAccuracyStatus summarizes recent accuracy checks for one project.
type ProjectAccuracyStatus struct {
	ProjectID         string    `json:"project_id"`
	OverallAccuracy   float64   `json:"overall_accuracy"`
	LastChecked       time.Time `json:"last_checked"`
	CriticalIssues    int       `json:"critical_issues"`
	AverageConfidence float64   `json:"average_confidence"`
	DataFreshness     int       `json:"data_freshness"`
	ReportCount       int       `json:"report_count"`
	WindowDays        int       `json:"window_days"`
}
