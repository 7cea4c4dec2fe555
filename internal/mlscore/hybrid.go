package mlscore

import "github.com/ranksignal/accuracy-cli/internal/model"

// Blend weights for the hybrid score. The model output dominates, the
// traditional heuristics anchor it, and the anomaly score scales the whole
// blend down when the history is noisy.
const (
	weightTraditional = 0.4
	weightML          = 0.6
)

// HybridScore blends the traditional and model scores and discounts the
// result by the anomaly score. Always in [0,1].
func HybridScore(traditional, ml, anomaly float64) float64 {
	return clamp01((weightTraditional*traditional + weightML*ml) * anomaly)
}

// LevelFor buckets a hybrid score into an operator-facing confidence
// level. Bucket lower bounds are inclusive: exactly 0.9 is very_high.
func LevelFor(hybrid float64) model.ConfidenceLevel {
	switch {
	case hybrid >= 0.9:
		return model.LevelVeryHigh
	case hybrid >= 0.75:
		return model.LevelHigh
	case hybrid >= 0.6:
		return model.LevelMedium
	case hybrid >= 0.4:
		return model.LevelLow
	default:
		return model.LevelVeryLow
	}
}
