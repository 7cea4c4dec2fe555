package mlscore

import "github.com/ranksignal/accuracy-cli/internal/model"

// scoreDisagreement is the gap between the model and traditional scores
// past which the two views are worth calling out.
const scoreDisagreement = 0.1

// buildRecommendations turns the score breakdown into operator guidance.
// Every applicable rule contributes a line; when nothing fires, a generic
// all-clear keeps the list non-empty.
func buildRecommendations(ml, traditional, anomaly float64, pattern model.PatternResult, rankings []model.RankingRecord) []string {
	var recs []string

	if ml-traditional > scoreDisagreement {
		recs = append(recs, "Model confidence exceeds the heuristic score; recent data may look better than the long-run history suggests. Verify against a second source before acting on it.")
	}
	if traditional-ml > scoreDisagreement {
		recs = append(recs, "Heuristic confidence exceeds the model score; the model is reacting to patterns the simple checks miss. Review the ranking history for irregular movement.")
	}
	if anomaly < 0.7 {
		recs = append(recs, "A notable share of positions deviate strongly from the mean. Investigate the flagged anomalies before trusting aggregates over this period.")
	}
	if pattern.Trend == model.TrendVolatile {
		recs = append(recs, "Rankings are volatile. Consider more frequent checks and hold off on conclusions drawn from single observations.")
	}
	if pattern.CycleDetected {
		recs = append(recs, "A cyclical pattern is present. Compare like-for-like periods rather than adjacent checks.")
	}
	if len(rankings) < coverageTarget {
		recs = append(recs, "Fewer than ten ranking records are available. Confidence improves with a longer history.")
	}
	if distinctSources(rankings) < 2 {
		recs = append(recs, "All records come from a single source. Adding a second provider enables cross-validation.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Data quality looks good. Current confidence scoring is reliable.")
	}
	return recs
}

func distinctSources(rankings []model.RankingRecord) int {
	seen := make(map[model.DataSource]bool, len(rankings))
	for _, r := range rankings {
		seen[r.Source] = true
	}
	return len(seen)
}
