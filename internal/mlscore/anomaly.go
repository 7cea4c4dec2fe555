package mlscore

import (
	"math"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// anomalyMinRecords is the sample size below which deviation from the mean
// is meaningless and the detector assumes no anomalies.
const anomalyMinRecords = 5

// AnomalyScore measures how much of the ranking history deviates more than
// two standard deviations from the mean position. 1 means clean, 0 means
// the history is dominated by outliers. Fewer than five records, or a
// perfectly flat series, score a clean 1.
func AnomalyScore(rankings []model.RankingRecord) float64 {
	if len(rankings) < anomalyMinRecords {
		return 1
	}

	pos := positions(rankings)
	m := mean(pos)
	sd := stdDev(pos)
	if sd == 0 {
		return 1
	}

	var outliers int
	for _, p := range pos {
		if math.Abs(p-m) > 2*sd {
			outliers++
		}
	}
	rate := float64(outliers) / float64(len(pos))
	return math.Max(0, 1-2*rate)
}

// IdentifySpecificAnomalies returns the records deviating more than two
// standard deviations from the mean position, tagged by how far out they
// sit. The slice preserves history order.
func IdentifySpecificAnomalies(rankings []model.RankingRecord) []model.RankingAnomaly {
	pos := positions(rankings)
	m := mean(pos)
	sd := stdDev(pos)
	if sd == 0 {
		return nil
	}

	var anomalies []model.RankingAnomaly
	for i, r := range rankings {
		deviation := math.Abs(pos[i]-m) / sd
		if deviation <= 2 {
			continue
		}
		severity := model.AnomalyMedium
		if deviation > 3 {
			severity = model.AnomalyHigh
		}
		anomalies = append(anomalies, model.RankingAnomaly{
			Position:  r.Position,
			CheckedAt: r.CheckedAt,
			Deviation: deviation,
			Severity:  severity,
		})
	}
	return anomalies
}
