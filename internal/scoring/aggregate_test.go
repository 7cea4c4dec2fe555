package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

func TestOverall_Weighting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		freshness    int
		consistency  int
		reliability  int
		completeness int
		want         int
	}{
		{"all perfect", 100, 100, 100, 100, 100},
		{"all zero", 0, 0, 0, 0, 0},
		{"all neutral", 50, 50, 50, 50, 50},
		{"fresh agreeing primary pair", 100, 95, 95, 100, 97},
		{"stale but consistent", 10, 95, 95, 100, 70},
		{"half rounds away from zero", 95, 95, 95, 90, 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Overall(tt.freshness, tt.consistency, tt.reliability, tt.completeness)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestOverall_RecomputationIsIdempotent(t *testing.T) {
	t.Parallel()

	for f := 0; f <= 100; f += 25 {
		for c := 0; c <= 100; c += 25 {
			first := Overall(f, c, 80, 60)
			assert.Equal(t, first, Overall(f, c, 80, 60))
			assert.GreaterOrEqual(t, first, 0)
			assert.LessOrEqual(t, first, 100)
		}
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	score := Compose(100, 95, 95, 100)
	assert.Equal(t, model.ConfidenceScore{
		Overall:      97,
		Freshness:    100,
		Consistency:  95,
		Reliability:  95,
		Completeness: 100,
	}, score)
}

func TestIsAccurate(t *testing.T) {
	t.Parallel()

	discrepancy := func(s model.Severity) model.Discrepancy {
		return model.Discrepancy{Severity: s}
	}

	tests := []struct {
		name          string
		overall       int
		discrepancies []model.Discrepancy
		want          bool
	}{
		{"high score no discrepancies", 95, nil, true},
		{"exactly at threshold", 70, nil, true},
		{"below threshold", 69, nil, false},
		{
			"critical always inaccurate",
			100,
			[]model.Discrepancy{discrepancy(model.SeverityCritical)},
			false,
		},
		{
			"low and medium tolerated",
			85,
			[]model.Discrepancy{discrepancy(model.SeverityLow), discrepancy(model.SeverityMedium)},
			true,
		},
		{
			"minority of high severities tolerated",
			85,
			[]model.Discrepancy{
				discrepancy(model.SeverityHigh),
				discrepancy(model.SeverityLow),
				discrepancy(model.SeverityLow),
			},
			true,
		},
		{
			"exactly half high is too many",
			85,
			[]model.Discrepancy{discrepancy(model.SeverityHigh), discrepancy(model.SeverityLow)},
			false,
		},
		{
			"majority high is too many",
			85,
			[]model.Discrepancy{
				discrepancy(model.SeverityHigh),
				discrepancy(model.SeverityHigh),
				discrepancy(model.SeverityLow),
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsAccurate(tt.overall, tt.discrepancies))
		})
	}
}
