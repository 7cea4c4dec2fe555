package mlscore

import (
	"math"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

const (
	// volatileStdDev is the position spread past which no directional
	// trend call is made.
	volatileStdDev = 10
	// trendSlopeThreshold is the minimum movement, in positions per day,
	// read as a real trend rather than noise.
	trendSlopeThreshold = 0.1
	// cycleCorrelation is the autocorrelation magnitude past which the
	// series counts as cyclical.
	cycleCorrelation = 0.5
	// seasonalityMinPoints gates the seasonality estimate: below this
	// many combined points the weekly autocorrelation is meaningless.
	seasonalityMinPoints = 30
	// seasonalityLag is one week for daily rank checks.
	seasonalityLag = 7
)

// RecognizePattern classifies a ranking history: directional trend, cycle
// detection via autocorrelation at a third of the series length, a
// placeholder weekly seasonality estimate over rankings plus historical
// records, and the specific outlier positions.
func RecognizePattern(rankings, historical []model.RankingRecord) model.PatternResult {
	pos := positions(rankings)

	result := model.PatternResult{
		Trend:     classifyTrend(rankings, pos),
		Anomalies: IdentifySpecificAnomalies(rankings),
	}

	if lag := len(pos) / 3; lag >= 1 {
		result.CycleDetected = math.Abs(autocorrelation(pos, lag)) > cycleCorrelation
	}

	combined := make([]float64, 0, len(historical)+len(pos))
	combined = append(combined, positions(historical)...)
	combined = append(combined, pos...)
	if len(combined) >= seasonalityMinPoints {
		result.Seasonality = clamp01(math.Abs(autocorrelation(combined, seasonalityLag)))
	}
	return result
}

// classifyTrend calls the direction of the series. A wide spread is
// volatile regardless of slope; remember that a falling position number is
// an improving rank.
func classifyTrend(rankings []model.RankingRecord, pos []float64) model.Trend {
	if stdDev(pos) > volatileStdDev {
		return model.TrendVolatile
	}
	slope := slopePerDay(rankings)
	switch {
	case slope < -trendSlopeThreshold:
		return model.TrendImproving
	case slope > trendSlopeThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}
