package mlscore

import (
	"math"
	"time"

	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

// coverageTarget is the history length past which record count stops
// adding confidence.
const coverageTarget = 10

// TraditionalScore grades a ranking history on [0,1] with the same
// weighting the primary confidence path uses: freshness of the newest
// check, position stability, mean source reliability, and record coverage.
func TraditionalScore(rankings []model.RankingRecord, now time.Time) float64 {
	if len(rankings) == 0 {
		return 0
	}

	newest := rankings[0].CheckedAt
	var reliabilitySum float64
	for _, r := range rankings {
		if r.CheckedAt.After(newest) {
			newest = r.CheckedAt
		}
		reliabilitySum += float64(scoring.ReliabilityScore(r.Source)) / 100
	}

	pos := positions(rankings)
	freshness := float64(scoring.FreshnessScore(newest, now)) / 100
	stab := stability(stdDev(pos), mean(pos))
	reliability := reliabilitySum / float64(len(rankings))
	coverage := math.Min(1, float64(len(rankings))/coverageTarget)

	return 0.30*freshness + 0.35*stab + 0.25*reliability + 0.10*coverage
}
