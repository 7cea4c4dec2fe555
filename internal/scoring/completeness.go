package scoring

import (
	"math"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// expectedSources maps a metric to the set of sources a fully-instrumented
// project reports it from. Metrics not listed here fall back to
// search_console alone.
var expectedSources = map[string][]model.DataSource{
	"organic_clicks":      {model.SourceSearchConsole, model.SourceAnalytics},
	"organic_impressions": {model.SourceSearchConsole},
	"ctr":                 {model.SourceSearchConsole},
	"keyword_position":    {model.SourceSearchConsole, model.SourceSemrush, model.SourceAhrefs},
	"backlinks":           {model.SourceAhrefs, model.SourceMoz, model.SourceSemrush},
	"domain_authority":    {model.SourceMoz},
	"organic_traffic":     {model.SourceAnalytics, model.SourceSemrush},
}

var defaultExpected = []model.DataSource{model.SourceSearchConsole}

// ExpectedSources returns the sources expected to report the given metric.
func ExpectedSources(metric string) []model.DataSource {
	if exp, ok := expectedSources[metric]; ok {
		return exp
	}
	return defaultExpected
}

// CompletenessScore is the fraction of expected sources for the metric
// that appear in the available set, scaled to 0-100 and capped at 100.
// Sources outside the expected set neither help nor hurt.
func CompletenessScore(metric string, available []model.DataSource) int {
	expected := ExpectedSources(metric)
	if len(expected) == 0 {
		return 100
	}

	seen := make(map[model.DataSource]bool, len(available))
	for _, s := range available {
		seen[s] = true
	}

	var hits int
	for _, e := range expected {
		if seen[e] {
			hits++
		}
	}

	score := int(math.Round(100 * float64(hits) / float64(len(expected))))
	if score > 100 {
		score = 100
	}
	return score
}
