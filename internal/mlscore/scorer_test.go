package mlscore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

func newTestScorer(groupSize int, groupPause time.Duration) *Scorer {
	s := NewScorer(groupSize, groupPause)
	s.nowFunc = func() time.Time { return testNow }
	return s
}

func TestScorer_Calculate(t *testing.T) {
	t.Parallel()

	s := newTestScorer(0, 0)
	input := model.MLInput{Rankings: dualSourceHistory()}

	res, err := s.Calculate(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Greater(t, res.MLScore, 0.0)
	assert.LessOrEqual(t, res.MLScore, 1.0)

	// Fresh, flat, dual-source, ten records: freshness 1.0, stability 1.0,
	// mean reliability 0.90, coverage 1.0.
	assert.InDelta(t, 0.975, res.TraditionalScore, 1e-9)
	assert.Equal(t, 1.0, res.AnomalyScore)
	assert.Equal(t, model.TrendStable, res.Pattern.Trend)
	assert.Empty(t, res.Pattern.Anomalies)

	blend := (weightTraditional*res.TraditionalScore + weightML*res.MLScore) * res.AnomalyScore
	assert.InDelta(t, clamp01(blend), res.HybridScore, 1e-12)
	assert.Equal(t, LevelFor(res.HybridScore), res.Level)

	assert.NotEmpty(t, res.Recommendations)
	assert.Equal(t, Metadata, res.ModelMetadata)
}

func TestScorer_Calculate_ContextDampens(t *testing.T) {
	t.Parallel()

	s := newTestScorer(0, 0)
	rankings := dualSourceHistory()

	plain, err := s.Calculate(context.Background(), model.MLInput{Rankings: rankings})
	require.NoError(t, err)

	damped, err := s.Calculate(context.Background(), model.MLInput{
		Rankings:   rankings,
		Contextual: &model.ContextualData{Industry: "finance", CompetitionLevel: ptrF(1.0)},
	})
	require.NoError(t, err)

	assert.Less(t, damped.MLScore, plain.MLScore)
}

func TestScorer_Calculate_Validation(t *testing.T) {
	t.Parallel()

	s := newTestScorer(0, 0)

	_, err := s.Calculate(context.Background(), model.MLInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "at least one ranking record")

	_, err = s.Calculate(context.Background(), model.MLInput{
		Rankings: []model.RankingRecord{rank(0, testNow, model.SourceSemrush)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranking record 0")

	_, err = s.Calculate(context.Background(), model.MLInput{
		Rankings:   series(model.SourceSemrush, 10, 11),
		Historical: []model.RankingRecord{{Position: 10, Source: model.SourceSemrush}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "historical record 0")
}

func TestScorer_CalculateBatch(t *testing.T) {
	t.Parallel()

	s := newTestScorer(5, time.Millisecond)

	inputs := make([]model.MLInput, 12)
	for i := range inputs {
		if i%2 == 0 {
			inputs[i] = model.MLInput{Rankings: series(model.SourceSearchConsole, 10, 10, 10, 10, 10)}
		} else {
			inputs[i] = model.MLInput{Rankings: series(model.SourceSemrush, 1, 30, 2, 28, 3, 29)}
		}
	}

	results, err := s.CalculateBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	for i, res := range results {
		want := model.TrendStable
		if i%2 == 1 {
			want = model.TrendVolatile
		}
		assert.Equal(t, want, res.Pattern.Trend, "input %d out of order", i)
		assert.NotEmpty(t, res.Level)
	}
}

func TestScorer_CalculateBatch_BadInputGetsZeroSlot(t *testing.T) {
	t.Parallel()

	s := newTestScorer(5, time.Millisecond)
	inputs := []model.MLInput{
		{Rankings: series(model.SourceSemrush, 10, 11, 12)},
		{},
		{Rankings: series(model.SourceSemrush, 5, 5, 5)},
	}

	results, err := s.CalculateBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NotEmpty(t, results[0].Level)
	assert.Empty(t, results[1].Level, "failed input leaves a zero-value slot")
	assert.NotEmpty(t, results[2].Level)
}

func TestScorer_CalculateBatch_Empty(t *testing.T) {
	t.Parallel()

	s := newTestScorer(0, 0)
	results, err := s.CalculateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScorer_CalculateBatch_Canceled(t *testing.T) {
	t.Parallel()

	s := newTestScorer(2, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []model.MLInput{{Rankings: series(model.SourceSemrush, 10, 11)}}
	_, err := s.CalculateBatch(ctx, inputs)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "batch canceled")
}

func TestNewScorer_Defaults(t *testing.T) {
	t.Parallel()

	s := NewScorer(0, 0)
	assert.Equal(t, defaultGroupSize, s.groupSize)
	require.NotNil(t, s.limiter)
}
