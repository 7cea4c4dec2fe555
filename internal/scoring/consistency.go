package scoring

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// neutralScore expresses "no evidence either way": comparisons that are
// missing or stale say nothing about consistency, good or bad.
const neutralScore = 50

// comparisonWindow is the maximum age of a comparison point. Older
// observations are discarded rather than counted against consistency.
const comparisonWindow = 48 * time.Hour

// relativeVariance returns |primary − compare| / |primary|. A primary of
// exactly zero cannot anchor a relative comparison; the caller decides
// whether that situation can arise before invoking this.
func relativeVariance(primary, compare float64) (float64, error) {
	if primary == 0 {
		return 0, eris.Wrap(model.ErrArithmetic, "scoring: primary.value is zero, relative variance is undefined")
	}
	return math.Abs(primary-compare) / math.Abs(primary), nil
}

// ConsistencyScore measures cross-source agreement: the mean relative
// variance between the primary observation and every comparison newer than
// the 48h window, mapped to a 0-100 score. With no usable comparisons it
// returns the neutral 50. A zero primary value with at least one usable
// comparison fails with ErrArithmetic.
func ConsistencyScore(primary model.DataPoint, compare []model.DataPoint, now time.Time) (int, error) {
	usable := recentPoints(compare, now)
	if len(usable) == 0 {
		return neutralScore, nil
	}

	var sum float64
	for _, c := range usable {
		v, err := relativeVariance(primary.Value, c.Value)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	avg := sum / float64(len(usable))

	switch {
	case avg <= 0.05:
		return 95, nil
	case avg <= 0.10:
		return 85, nil
	case avg <= 0.20:
		return 70, nil
	case avg <= 0.35:
		return 50, nil
	default:
		return 25, nil
	}
}

// recentPoints filters out comparisons older than the comparison window.
func recentPoints(points []model.DataPoint, now time.Time) []model.DataPoint {
	var usable []model.DataPoint
	for _, p := range points {
		if now.Sub(p.Timestamp) <= comparisonWindow {
			usable = append(usable, p)
		}
	}
	return usable
}
