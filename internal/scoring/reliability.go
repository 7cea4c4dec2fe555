package scoring

import "github.com/ranksignal/accuracy-cli/internal/model"

// defaultReliability is the score for sources with no profile. Unknown
// sources are representable, never an error.
const defaultReliability = 50

// sourceReliability is the static trust profile per provider. First-party
// consoles report their own measurements; third parties estimate them.
var sourceReliability = map[model.DataSource]int{
	model.SourceSearchConsole:   95,
	model.SourceAnalytics:       95,
	model.SourceSemrush:         85,
	model.SourceAhrefs:          85,
	model.SourceSerpAPI:         80,
	model.SourceMoz:             75,
	model.SourceInternalCrawler: 70,
}

// ReliabilityScore returns the static 0-100 trust score for a source.
func ReliabilityScore(src model.DataSource) int {
	if score, ok := sourceReliability[src]; ok {
		return score
	}
	return defaultReliability
}
