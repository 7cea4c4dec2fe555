package mlscore

import (
	"time"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func rank(pos float64, checkedAt time.Time, source model.DataSource) model.RankingRecord {
	return model.RankingRecord{Position: pos, CheckedAt: checkedAt, Source: source}
}

// series builds a daily history from the given positions, oldest first,
// with the newest record one hour before testNow.
func series(source model.DataSource, positions ...float64) []model.RankingRecord {
	records := make([]model.RankingRecord, len(positions))
	for i, p := range positions {
		age := time.Hour + time.Duration(len(positions)-1-i)*24*time.Hour
		records[i] = rank(p, testNow.Add(-age), source)
	}
	return records
}

func ptrF(v float64) *float64 { return &v }

func ptrI(v int64) *int64 { return &v }
