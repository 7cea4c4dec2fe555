package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

var reportCheckedAt = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func testReport() *model.AccuracyReport {
	return &model.AccuracyReport{
		ID:            "rep-1",
		ProjectID:     "proj-1",
		Metric:        "organic_clicks",
		PrimarySource: model.SourceSearchConsole,
		PrimaryValue:  1200,
		SecondaryValues: []model.SourceValue{
			{Source: model.SourceAnalytics, Value: 1150, Timestamp: reportCheckedAt.Add(-2 * time.Hour)},
		},
		Confidence: model.ConfidenceScore{Overall: 92, Freshness: 100, Consistency: 95, Reliability: 95, Completeness: 50},
		Discrepancies: []model.Discrepancy{
			{
				Source1:     model.SourceSearchConsole,
				Source2:     model.SourceAnalytics,
				Value1:      1200,
				Value2:      1150,
				Variance:    0.0417,
				Severity:    model.SeverityLow,
				Explanation: "minor variance between sources, within normal measurement tolerance",
			},
		},
		IsAccurate: true,
		CheckedAt:  reportCheckedAt,
	}
}

func TestPostgresStore_CreateReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	report := testReport()

	mock.ExpectExec(`INSERT INTO accuracy_reports`).
		WithArgs("rep-1", "proj-1", "organic_clicks", "search_console", 1200.0,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), true, reportCheckedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateReport(context.Background(), report)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateReport_AssignsDefaults(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	report := testReport()
	report.ID = ""
	report.CheckedAt = time.Time{}

	mock.ExpectExec(`INSERT INTO accuracy_reports`).
		WithArgs(pgxmock.AnyArg(), "proj-1", "organic_clicks", "search_console", 1200.0,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateReport(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.CheckedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateReport_InsertError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO accuracy_reports`).
		WillReturnError(errors.New("connection refused"))

	err := s.CreateReport(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert report for proj-1/organic_clicks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateReports_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(
		pgx.Identifier{"accuracy_reports"},
		[]string{"id", "project_id", "metric", "primary_source", "primary_value", "secondary_values", "confidence", "discrepancies", "is_accurate", "checked_at"},
	).WillReturnResult(2)

	second := testReport()
	second.ID = "rep-2"
	second.Metric = "backlinks"

	n, err := s.CreateReports(context.Background(), []model.AccuracyReport{*testReport(), *second})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateReports_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	n, err := s.CreateReports(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgresStore_ListReports_AllFilters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	report := testReport()
	secJSON, err := json.Marshal(report.SecondaryValues)
	require.NoError(t, err)
	confJSON, err := json.Marshal(report.Confidence)
	require.NoError(t, err)
	discJSON, err := json.Marshal(report.Discrepancies)
	require.NoError(t, err)

	from := reportCheckedAt.Add(-30 * 24 * time.Hour)
	to := reportCheckedAt

	mock.ExpectQuery(`SELECT .+ FROM accuracy_reports WHERE true AND project_id = \$1 AND metric = \$2 AND checked_at >= \$3 AND checked_at <= \$4 ORDER BY checked_at DESC LIMIT \$5`).
		WithArgs("proj-1", "organic_clicks", from, to, 25).
		WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "metric", "primary_source", "primary_value", "secondary_values", "confidence", "discrepancies", "is_accurate", "checked_at"}).
			AddRow("rep-1", "proj-1", "organic_clicks", "search_console", 1200.0, &secJSON, confJSON, &discJSON, true, reportCheckedAt))

	got, err := s.ListReports(context.Background(), ReportFilter{
		ProjectID: "proj-1",
		Metric:    "organic_clicks",
		From:      from,
		To:        to,
		Limit:     25,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *report, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports_NullJSONColumns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	confJSON, err := json.Marshal(model.ConfidenceScore{Overall: 50, Freshness: 50, Consistency: 50, Reliability: 50, Completeness: 50})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM accuracy_reports WHERE true AND project_id = \$1 ORDER BY checked_at DESC LIMIT \$2`).
		WithArgs("proj-2", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "metric", "primary_source", "primary_value", "secondary_values", "confidence", "discrepancies", "is_accurate", "checked_at"}).
			AddRow("rep-3", "proj-2", "ctr", "search_console", 3.4, (*[]byte)(nil), confJSON, (*[]byte)(nil), false, reportCheckedAt))

	got, err := s.ListReports(context.Background(), ReportFilter{ProjectID: "proj-2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].SecondaryValues)
	assert.Empty(t, got[0].Discrepancies)
	assert.Equal(t, 50, got[0].Confidence.Overall)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReports_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM accuracy_reports`).
		WithArgs("proj-none", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "metric", "primary_source", "primary_value", "secondary_values", "confidence", "discrepancies", "is_accurate", "checked_at"}))

	got, err := s.ListReports(context.Background(), ReportFilter{ProjectID: "proj-none"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteReportsBefore(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cutoff := reportCheckedAt.Add(-90 * 24 * time.Hour)
	mock.ExpectExec(`DELETE FROM accuracy_reports WHERE checked_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 42))

	n, err := s.DeleteReportsBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS accuracy_reports`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
