// Package mlscore implements the hybrid confidence path: an 11-feature
// extraction over ranking histories, a fixed-weight simulated inference
// model, anomaly detection, time-series pattern recognition, and the
// blend of all of it into an operator-facing confidence result.
package mlscore

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

const (
	defaultGroupSize  = 10
	defaultGroupPause = 500 * time.Millisecond
)

// Scorer runs hybrid confidence calculations. Scoring itself is pure;
// the only state is the pacing limiter for batch work, so one Scorer is
// safe for concurrent use.
type Scorer struct {
	groupSize int
	limiter   *rate.Limiter

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewScorer creates a Scorer. groupSize bounds how many inputs of a batch
// score concurrently; groupPause spaces consecutive groups to bound burst
// load on whatever consumes the results. Zero values take the defaults.
func NewScorer(groupSize int, groupPause time.Duration) *Scorer {
	if groupSize <= 0 {
		groupSize = defaultGroupSize
	}
	if groupPause <= 0 {
		groupPause = defaultGroupPause
	}
	return &Scorer{
		groupSize: groupSize,
		limiter:   rate.NewLimiter(rate.Every(groupPause), 1),
		nowFunc:   time.Now,
	}
}

// Calculate scores one ranking history. The input needs at least one
// ranking record; historical records and contextual hints are optional.
func (s *Scorer) Calculate(_ context.Context, input model.MLInput) (*model.MLConfidenceResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := s.nowFunc()

	ml := adjustForContext(infer(extractFeatures(input.Rankings, input.Contextual, now)), input.Contextual)
	anomaly := AnomalyScore(input.Rankings)
	pattern := RecognizePattern(input.Rankings, input.Historical)
	traditional := TraditionalScore(input.Rankings, now)
	hybrid := HybridScore(traditional, ml, anomaly)

	return &model.MLConfidenceResult{
		MLScore:          ml,
		TraditionalScore: traditional,
		HybridScore:      hybrid,
		AnomalyScore:     anomaly,
		Pattern:          pattern,
		Level:            LevelFor(hybrid),
		Recommendations:  buildRecommendations(ml, traditional, anomaly, pattern, input.Rankings),
		ModelMetadata:    Metadata,
	}, nil
}

// CalculateBatch scores inputs in fixed-size groups: members of a group
// run concurrently, consecutive groups are spaced by the pacing limiter.
// A failing input produces a zero-value slot and a log line rather than
// aborting the batch. Results keep input order.
func (s *Scorer) CalculateBatch(ctx context.Context, inputs []model.MLInput) ([]model.MLConfidenceResult, error) {
	results := make([]model.MLConfidenceResult, len(inputs))

	for start := 0; start < len(inputs); start += s.groupSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "mlscore: batch canceled")
		}

		end := start + s.groupSize
		if end > len(inputs) {
			end = len(inputs)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				res, err := s.Calculate(gctx, inputs[i])
				if err != nil {
					zap.L().Warn("batch input not scored",
						zap.Int("index", i),
						zap.Error(err))
					return nil
				}
				results[i] = *res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "mlscore: batch group")
		}
	}
	return results, nil
}

// validateInput fails fast on an empty or malformed history, naming the
// record at fault.
func validateInput(input model.MLInput) error {
	if len(input.Rankings) == 0 {
		return eris.Wrap(model.ErrValidation, "mlscore: at least one ranking record is required")
	}
	for i, r := range input.Rankings {
		if err := r.Validate(); err != nil {
			return eris.Wrapf(err, "mlscore: ranking record %d", i)
		}
	}
	for i, r := range input.Historical {
		if err := r.Validate(); err != nil {
			return eris.Wrapf(err, "mlscore: historical record %d", i)
		}
	}
	return nil
}
