// Package scoring implements the primary confidence path: the four
// component scorers, cross-source discrepancy detection, the weighted
// aggregate, and the Engine that assembles persisted accuracy reports.
package scoring

import "time"

// FreshnessScore maps the age of an observation to a 0-100 score using a
// fixed staircase. Future timestamps count as fresh: a provider clock ahead
// of ours is not stale data.
func FreshnessScore(ts, now time.Time) int {
	age := now.Sub(ts).Hours()
	switch {
	case age <= 1:
		return 100
	case age <= 6:
		return 90
	case age <= 12:
		return 80
	case age <= 24:
		return 70
	case age <= 48:
		return 50
	case age <= 72:
		return 30
	default:
		return 10
	}
}
