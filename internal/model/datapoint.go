package model

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// DataPoint is one observation of a metric from one source. Points are
// created by the caller and consumed read-only by the engine. Negative
// values are valid (delta metrics); NaN and Inf are not.
type DataPoint struct {
	ID        string            `json:"id,omitempty" yaml:"id,omitempty"`
	Source    DataSource        `json:"source" yaml:"source"`
	Value     float64           `json:"value" yaml:"value"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Validate checks the required fields, naming the offending field in the
// returned error.
func (p DataPoint) Validate() error {
	if p.Source == "" {
		return eris.Wrap(ErrValidation, "model: data_point.source is required")
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return eris.Wrapf(ErrValidation, "model: data_point.value must be a finite number, got %v", p.Value)
	}
	if p.Timestamp.IsZero() {
		return eris.Wrap(ErrValidation, "model: data_point.timestamp is required")
	}
	return nil
}

// AgeHours returns the age of the observation relative to now, in hours.
// Future timestamps yield a negative age.
func (p DataPoint) AgeHours(now time.Time) float64 {
	return now.Sub(p.Timestamp).Hours()
}

// SourceValue is a compact (source, value, timestamp) triple recorded on an
// accuracy report for each comparison observation.
type SourceValue struct {
	Source    DataSource `json:"source"`
	Value     float64    `json:"value"`
	Timestamp time.Time  `json:"timestamp"`
}
