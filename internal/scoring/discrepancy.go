package scoring

import (
	"github.com/rotisserie/eris"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// noiseFloor is the relative variance below which two sources are treated
// as agreeing. Pairs at or under the floor produce no discrepancy at all.
const noiseFloor = 0.05

// Tier explanations are fixed strings, one per severity. Callers and
// alerting match on Severity, never on this text.
const (
	explainLow      = "minor variance between sources, within normal measurement tolerance"
	explainMedium   = "moderate variance between sources, likely a tracking or attribution difference"
	explainHigh     = "high variance between sources, indicates a tracking gap or configuration issue"
	explainCritical = "critical variance between sources, data quality failure requiring investigation"
)

// classifySeverity maps a relative variance above the noise floor to a
// severity tier. Upper bounds are inclusive.
func classifySeverity(variance float64) (model.Severity, string) {
	switch {
	case variance <= 0.15:
		return model.SeverityLow, explainLow
	case variance <= 0.30:
		return model.SeverityMedium, explainMedium
	case variance <= 0.50:
		return model.SeverityHigh, explainHigh
	default:
		return model.SeverityCritical, explainCritical
	}
}

// DetectDiscrepancies compares the primary observation against every
// comparison point and reports the pairs whose relative variance exceeds
// the noise floor. A zero primary value with at least one comparison fails
// with ErrArithmetic; with no comparisons the result is simply empty.
func DetectDiscrepancies(primary model.DataPoint, compare []model.DataPoint) ([]model.Discrepancy, error) {
	if len(compare) == 0 {
		return nil, nil
	}
	if primary.Value == 0 {
		return nil, eris.Wrap(model.ErrArithmetic, "scoring: primary.value is zero, cannot compare sources")
	}

	discrepancies := make([]model.Discrepancy, 0, len(compare))
	for _, c := range compare {
		variance, err := relativeVariance(primary.Value, c.Value)
		if err != nil {
			return nil, err
		}
		if variance <= noiseFloor {
			continue
		}
		severity, explanation := classifySeverity(variance)
		discrepancies = append(discrepancies, model.Discrepancy{
			Source1:     primary.Source,
			Source2:     c.Source,
			Value1:      primary.Value,
			Value2:      c.Value,
			Variance:    variance,
			Severity:    severity,
			Explanation: explanation,
		})
	}
	return discrepancies, nil
}
