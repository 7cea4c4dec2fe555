package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ranksignal/accuracy-cli/internal/integration"
	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/resilience"
	"github.com/ranksignal/accuracy-cli/internal/store"
)

// statusWindowDays is the report lookback for project status summaries and
// the default history window.
const statusWindowDays = 30

// Engine orchestrates the scorers into confidence scores and accuracy
// reports. All scoring is pure; the only I/O is best-effort report
// persistence, guarded by retry and a circuit breaker so a failing store
// can never block or invalidate a computed report. A nil store degrades to
// computed-but-not-persisted.
type Engine struct {
	store   store.Store
	status  integration.StatusProvider
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewEngine creates an Engine. Both collaborators may be nil: without a
// store reports are computed but not persisted, without a status provider
// completeness scores neutral.
func NewEngine(st store.Store, status integration.StatusProvider) *Engine {
	return &Engine{
		store:   st,
		status:  status,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 200 * time.Millisecond,
			OnRetry:        resilience.RetryLogger("store", "create_report"),
		},
		nowFunc: time.Now,
	}
}

// CalculateConfidenceScore scores one observation of a metric against
// comparison observations from other sources.
func (e *Engine) CalculateConfidenceScore(ctx context.Context, projectID, metric string, primary model.DataPoint, compare []model.DataPoint) (*model.ConfidenceScore, error) {
	if err := validateInputs(primary, compare); err != nil {
		return nil, err
	}
	now := e.nowFunc()

	consistency, err := ConsistencyScore(primary, compare, now)
	if err != nil {
		return nil, err
	}

	score := Compose(
		FreshnessScore(primary.Timestamp, now),
		consistency,
		ReliabilityScore(primary.Source),
		e.completeness(ctx, projectID, metric),
	)
	return &score, nil
}

// DetectDiscrepancies validates the inputs and reports cross-source
// disagreements above the noise floor.
func (e *Engine) DetectDiscrepancies(primary model.DataPoint, compare []model.DataPoint) ([]model.Discrepancy, error) {
	if err := validateInputs(primary, compare); err != nil {
		return nil, err
	}
	return DetectDiscrepancies(primary, compare)
}

// GenerateAccuracyReport scores the observation, classifies discrepancies,
// renders the accuracy verdict, and persists the report best-effort. The
// report is always returned, whether or not the store accepted it.
func (e *Engine) GenerateAccuracyReport(ctx context.Context, projectID, metric string, primary model.DataPoint, compare []model.DataPoint) (*model.AccuracyReport, error) {
	confidence, err := e.CalculateConfidenceScore(ctx, projectID, metric, primary, compare)
	if err != nil {
		return nil, err
	}
	discrepancies, err := DetectDiscrepancies(primary, compare)
	if err != nil {
		return nil, err
	}

	secondary := make([]model.SourceValue, 0, len(compare))
	for _, c := range compare {
		secondary = append(secondary, model.SourceValue{
			Source:    c.Source,
			Value:     c.Value,
			Timestamp: c.Timestamp,
		})
	}

	report := &model.AccuracyReport{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		Metric:          metric,
		PrimarySource:   primary.Source,
		PrimaryValue:    primary.Value,
		SecondaryValues: secondary,
		Confidence:      *confidence,
		Discrepancies:   discrepancies,
		IsAccurate:      IsAccurate(confidence.Overall, discrepancies),
		CheckedAt:       e.nowFunc(),
	}

	e.persist(ctx, report)
	return report, nil
}

// AccuracyHistory lists reports for a project over the given number of
// days (default 30), newest first, optionally narrowed to one metric.
func (e *Engine) AccuracyHistory(ctx context.Context, projectID, metric string, days int) ([]model.AccuracyReport, error) {
	if e.store == nil {
		return nil, eris.New("scoring: no report store configured")
	}
	if days <= 0 {
		days = statusWindowDays
	}
	now := e.nowFunc()

	reports, err := e.store.ListReports(ctx, store.ReportFilter{
		ProjectID: projectID,
		Metric:    metric,
		From:      now.AddDate(0, 0, -days),
		To:        now,
	})
	if err != nil {
		return nil, eris.Wrap(err, "scoring: list accuracy history")
	}
	return reports, nil
}

// ProjectStatus summarizes a project's recent accuracy: share of accurate
// reports, critical discrepancy count, mean confidence, and how fresh the
// latest check is.
func (e *Engine) ProjectStatus(ctx context.Context, projectID string) (*model.ProjectAccuracyStatus, error) {
	reports, err := e.AccuracyHistory(ctx, projectID, "", statusWindowDays)
	if err != nil {
		return nil, err
	}

	status := &model.ProjectAccuracyStatus{
		ProjectID:   projectID,
		ReportCount: len(reports),
		WindowDays:  statusWindowDays,
	}
	if len(reports) == 0 {
		return status, nil
	}

	var accurate, confidenceSum int
	for _, r := range reports {
		if r.IsAccurate {
			accurate++
		}
		confidenceSum += r.Confidence.Overall
		status.CriticalIssues += r.CriticalCount()
		if r.CheckedAt.After(status.LastChecked) {
			status.LastChecked = r.CheckedAt
		}
	}
	status.OverallAccuracy = 100 * float64(accurate) / float64(len(reports))
	status.AverageConfidence = float64(confidenceSum) / float64(len(reports))
	status.DataFreshness = FreshnessScore(status.LastChecked, e.nowFunc())
	return status, nil
}

// completeness scores source coverage for the metric. No provider, or a
// provider failure, means no evidence either way: score neutral.
func (e *Engine) completeness(ctx context.Context, projectID, metric string) int {
	if e.status == nil {
		return neutralScore
	}
	available, err := e.status.ActiveSources(ctx, projectID)
	if err != nil {
		zap.L().Warn("integration status unavailable, scoring completeness neutral",
			zap.String("project_id", projectID),
			zap.String("metric", metric),
			zap.Error(err))
		return neutralScore
	}
	return CompletenessScore(metric, available)
}

// persist writes the report through retry inside the circuit breaker.
// Failures are logged and swallowed: persistence is best-effort and must
// never fail the caller.
func (e *Engine) persist(ctx context.Context, report *model.AccuracyReport) {
	if e.store == nil {
		return
	}
	err := e.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Do(ctx, e.retry, func(ctx context.Context) error {
			return e.store.CreateReport(ctx, report)
		})
	})
	if err != nil {
		zap.L().Warn("report not persisted",
			zap.String("report_id", report.ID),
			zap.String("project_id", report.ProjectID),
			zap.String("metric", report.Metric),
			zap.Error(err))
	}
}

// validateInputs fails fast on malformed observations, naming the field
// and the comparison index at fault.
func validateInputs(primary model.DataPoint, compare []model.DataPoint) error {
	if err := primary.Validate(); err != nil {
		return eris.Wrap(err, "scoring: primary data point")
	}
	for i, c := range compare {
		if err := c.Validate(); err != nil {
			return eris.Wrapf(err, "scoring: comparison data point %d", i)
		}
	}
	return nil
}
