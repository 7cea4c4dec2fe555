package scoring

import (
	"math"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// Component weights for the overall confidence score. Consistency carries
// the most weight because cross-source agreement is the strongest accuracy
// signal we have; completeness the least.
const (
	weightFreshness    = 0.30
	weightConsistency  = 0.35
	weightReliability  = 0.25
	weightCompleteness = 0.10
)

// Overall combines the four component scores into the weighted overall
// confidence score. Deterministic: the same four inputs always reproduce
// the same overall.
func Overall(freshness, consistency, reliability, completeness int) int {
	weighted := weightFreshness*float64(freshness) +
		weightConsistency*float64(consistency) +
		weightReliability*float64(reliability) +
		weightCompleteness*float64(completeness)
	return int(math.Round(weighted))
}

// Compose builds a full ConfidenceScore from the four components.
func Compose(freshness, consistency, reliability, completeness int) model.ConfidenceScore {
	return model.ConfidenceScore{
		Overall:      Overall(freshness, consistency, reliability, completeness),
		Freshness:    freshness,
		Consistency:  consistency,
		Reliability:  reliability,
		Completeness: completeness,
	}
}

// IsAccurate decides whether a metric reading can be trusted: the overall
// score must reach 70, no discrepancy may be critical, and fewer than half
// of all discrepancies may be high or critical.
func IsAccurate(overall int, discrepancies []model.Discrepancy) bool {
	if overall < 70 {
		return false
	}

	var high, critical int
	for _, d := range discrepancies {
		switch d.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityHigh:
			high++
		case model.SeverityLow, model.SeverityMedium:
		}
	}
	if critical > 0 {
		return false
	}

	total := len(discrepancies)
	if total == 0 {
		total = 1
	}
	return float64(high+critical)/float64(total) < 0.5
}
