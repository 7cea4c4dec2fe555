// Package model defines the data types shared by the confidence and
// accuracy scoring engine: observations, scores, discrepancies, reports,
// and the ranking-history types consumed by the hybrid ML path.
package model

// DataSource identifies an external data provider. The set is closed:
// scorers carry a fixed profile for each known source and fall back to a
// conservative default for anything else.
type DataSource string

const (
	// SourceSearchConsole is the primary search-engine console.
	SourceSearchConsole DataSource = "search_console"
	// SourceAnalytics is the primary analytics property.
	SourceAnalytics DataSource = "analytics"
	// SourceSemrush is an established third-party SEO API.
	SourceSemrush DataSource = "semrush"
	// SourceAhrefs is an established third-party SEO API.
	SourceAhrefs DataSource = "ahrefs"
	// SourceSerpAPI is a third-party SERP scraping API.
	SourceSerpAPI DataSource = "serpapi"
	// SourceMoz is a secondary third-party SEO API.
	SourceMoz DataSource = "moz"
	// SourceInternalCrawler is the self-hosted rank crawler.
	SourceInternalCrawler DataSource = "internal_crawler"
)

// KnownSources returns the fixed provider set in reliability order.
func KnownSources() []DataSource {
	return []DataSource{
		SourceSearchConsole,
		SourceAnalytics,
		SourceSemrush,
		SourceAhrefs,
		SourceSerpAPI,
		SourceMoz,
		SourceInternalCrawler,
	}
}

// Known reports whether s is one of the fixed provider identifiers.
func (s DataSource) Known() bool {
	switch s {
	case SourceSearchConsole, SourceAnalytics, SourceSemrush, SourceAhrefs,
		SourceSerpAPI, SourceMoz, SourceInternalCrawler:
		return true
	default:
		return false
	}
}
