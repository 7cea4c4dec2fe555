package mlscore

import (
	"math"
	"time"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// featureCount is the input width of the simulated inference model.
const featureCount = 11

// featureVector indices. The ordering is part of the model contract: the
// inference weights below are trained against exactly this layout.
const (
	featMeanPosition = iota
	featPositionStdDev
	featFreshness
	featSourceDiversity
	featEngagement
	featTrendSlope
	featStability
	featIndustryWeight
	featCompetitionLevel
	featSeasonalityHint
	featSearchVolume
)

type featureVector [featureCount]float64

// contextDefault stands in for any contextual factor the caller did not
// supply: no signal either way.
const contextDefault = 0.5

// industryWeights expresses how contested organic rankings are per
// industry. Unlisted industries take the neutral default.
var industryWeights = map[string]float64{
	"finance":     0.9,
	"insurance":   0.9,
	"gambling":    0.9,
	"legal":       0.85,
	"real_estate": 0.8,
	"ecommerce":   0.75,
	"technology":  0.7,
	"healthcare":  0.7,
	"travel":      0.65,
	"education":   0.6,
}

// extractFeatures maps a ranking history plus optional contextual hints to
// the fixed-length vector the inference model consumes. The caller has
// already validated the records.
func extractFeatures(rankings []model.RankingRecord, contextual *model.ContextualData, now time.Time) featureVector {
	pos := positions(rankings)
	posMean := mean(pos)
	posStdDev := stdDev(pos)

	var engaged int
	distinct := make(map[model.DataSource]bool, len(rankings))
	newest := rankings[0].CheckedAt
	for _, r := range rankings {
		if r.HasEngagement() {
			engaged++
		}
		distinct[r.Source] = true
		if r.CheckedAt.After(newest) {
			newest = r.CheckedAt
		}
	}
	recencyHours := now.Sub(newest).Hours()

	var f featureVector
	f[featMeanPosition] = clamp01(posMean / 100)
	f[featPositionStdDev] = clamp01(posStdDev / 50)
	f[featFreshness] = clamp01(1 - recencyHours/168)
	f[featSourceDiversity] = math.Min(1, float64(len(distinct))/3)
	f[featEngagement] = float64(engaged) / float64(len(rankings))
	f[featTrendSlope] = math.Abs(slopePerDay(rankings))
	f[featStability] = stability(posStdDev, posMean)
	f[featIndustryWeight] = contextDefault
	f[featCompetitionLevel] = contextDefault
	f[featSeasonalityHint] = contextDefault
	f[featSearchVolume] = contextDefault

	if contextual != nil {
		if w, ok := industryWeights[contextual.Industry]; ok {
			f[featIndustryWeight] = w
		}
		if contextual.CompetitionLevel != nil {
			f[featCompetitionLevel] = *contextual.CompetitionLevel
		}
		if contextual.Seasonality != nil {
			f[featSeasonalityHint] = *contextual.Seasonality
		}
		if contextual.SearchVolume != nil {
			f[featSearchVolume] = math.Min(1, *contextual.SearchVolume/100000)
		}
	}
	return f
}

// stability is 1 when positions never move, approaching 0 as the spread
// grows relative to the mean.
func stability(stdDev, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	return 1 - math.Min(1, stdDev/mean)
}
