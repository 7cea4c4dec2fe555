package model

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// RankingRecord is one point in the position history of a tracked keyword.
// Position 1 is the best rank. Clicks and Impressions are optional; their
// presence feeds the completeness feature of the hybrid scorer.
type RankingRecord struct {
	Position    float64    `json:"position" yaml:"position"`
	CheckedAt   time.Time  `json:"checked_at" yaml:"checked_at"`
	Clicks      *int64     `json:"clicks,omitempty" yaml:"clicks,omitempty"`
	Impressions *int64     `json:"impressions,omitempty" yaml:"impressions,omitempty"`
	Source      DataSource `json:"source" yaml:"source"`
}

// Validate checks the required fields, naming the offending field in the
// returned error.
func (r RankingRecord) Validate() error {
	if math.IsNaN(r.Position) || math.IsInf(r.Position, 0) || r.Position <= 0 {
		return eris.Wrapf(ErrValidation, "model: ranking_record.position must be a positive number, got %v", r.Position)
	}
	if r.CheckedAt.IsZero() {
		return eris.Wrap(ErrValidation, "model: ranking_record.checked_at is required")
	}
	return nil
}

// HasEngagement reports whether the record carries clicks or impressions.
func (r RankingRecord) HasEngagement() bool {
	return r.Clicks != nil || r.Impressions != nil
}

// ContextualData carries optional hints about the tracked keyword's market.
// Absent fields default to a neutral 0.5 during feature extraction.
type ContextualData struct {
	Industry         string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	CompetitionLevel *float64 `json:"competition_level,omitempty" yaml:"competition_level,omitempty"`
	Seasonality      *float64 `json:"seasonality,omitempty" yaml:"seasonality,omitempty"`
	SearchVolume     *float64 `json:"search_volume,omitempty" yaml:"search_volume,omitempty"`
}

// MLInput is the input to the hybrid confidence scorer.
type MLInput struct {
	Rankings   []RankingRecord `json:"rankings" yaml:"rankings"`
	Historical []RankingRecord `json:"historical,omitempty" yaml:"historical,omitempty"`
	Contextual *ContextualData `json:"contextual,omitempty" yaml:"contextual,omitempty"`
}

// Trend classifies the direction of a ranking time series.
type Trend string

const (
	TrendStable    Trend = "stable"
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendVolatile  Trend = "volatile"
)

// AnomalySeverity grades a single outlier in a ranking history.
type AnomalySeverity string

const (
	AnomalyMedium AnomalySeverity = "medium"
	AnomalyHigh   AnomalySeverity = "high"
)

// RankingAnomaly is one outlier position flagged by pattern recognition.
// Deviation is measured in standard deviations from the mean position.
type RankingAnomaly struct {
	Position  float64         `json:"position"`
	CheckedAt time.Time       `json:"checked_at"`
	Deviation float64         `json:"deviation"`
	Severity  AnomalySeverity `json:"severity"`
}

// PatternResult holds the trend, seasonality, and cycle classification of a
// ranking history.
type PatternResult struct {
	Trend         Trend            `json:"trend"`
	Seasonality   float64          `json:"seasonality"`
	CycleDetected bool             `json:"cycle_detected"`
	Anomalies     []RankingAnomaly `json:"anomalies,omitempty"`
}

// ConfidenceLevel buckets a hybrid score into an operator-facing grade.
type ConfidenceLevel string

const (
	LevelVeryHigh ConfidenceLevel = "very_high"
	LevelHigh     ConfidenceLevel = "high"
	LevelMedium   ConfidenceLevel = "medium"
	LevelLow      ConfidenceLevel = "low"
	LevelVeryLow  ConfidenceLevel = "very_low"
)

// ModelMetadata documents the simulated inference model behind an ML score.
// The values are fixed constants describing the approximator; they are not
// measured at runtime.
type ModelMetadata struct {
	Version         string  `json:"version"`
	TrainingSamples int     `json:"training_samples"`
	Accuracy        float64 `json:"accuracy"`
}

// MLConfidenceResult is the output of the hybrid confidence scorer. All
// scores are on [0,1].
type MLConfidenceResult struct {
	MLScore          float64         `json:"ml_score"`
	TraditionalScore float64         `json:"traditional_score"`
	HybridScore      float64         `json:"hybrid_score"`
	AnomalyScore     float64         `json:"anomaly_score"`
	Pattern          PatternResult   `json:"pattern_recognition"`
	Level            ConfidenceLevel `json:"confidence_level"`
	Recommendations  []string        `json:"recommendations"`
	ModelMetadata    ModelMetadata   `json:"model_metadata"`
}
