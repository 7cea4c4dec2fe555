package mlscore

import (
	"math"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

func positions(records []model.RankingRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Position
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// slopePerDay is the ordinary least-squares slope of position over time,
// in position units per day. Fewer than two records, or records sharing a
// single timestamp, have no defined trend and yield 0.
func slopePerDay(records []model.RankingRecord) float64 {
	if len(records) < 2 {
		return 0
	}

	origin := records[0].CheckedAt
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.CheckedAt.Sub(origin).Hours() / 24
		ys[i] = r.Position
	}

	xMean := mean(xs)
	yMean := mean(ys)
	var num, den float64
	for i := range xs {
		dx := xs[i] - xMean
		num += dx * (ys[i] - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// autocorrelation computes the lag-k autocorrelation of the mean-centered
// series. Degenerate series (constant, or shorter than lag+1) yield 0.
func autocorrelation(values []float64, lag int) float64 {
	if lag < 1 || len(values) <= lag {
		return 0
	}
	m := mean(values)

	var num, den float64
	for i := range values {
		d := values[i] - m
		den += d * d
	}
	if den == 0 {
		return 0
	}
	for i := lag; i < len(values); i++ {
		num += (values[i] - m) * (values[i-lag] - m)
	}
	return num / den
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
