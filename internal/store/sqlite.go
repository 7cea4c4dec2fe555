package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS accuracy_reports (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL,
	metric           TEXT NOT NULL,
	primary_source   TEXT NOT NULL,
	primary_value    REAL NOT NULL,
	secondary_values TEXT,
	confidence       TEXT NOT NULL,
	discrepancies    TEXT,
	is_accurate      BOOLEAN NOT NULL,
	checked_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accuracy_reports_project ON accuracy_reports(project_id);
CREATE INDEX IF NOT EXISTS idx_accuracy_reports_project_metric ON accuracy_reports(project_id, metric);
CREATE INDEX IF NOT EXISTS idx_accuracy_reports_checked_at ON accuracy_reports(checked_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateReport persists one built report. An empty ID or zero CheckedAt is
// filled in before the insert.
func (s *SQLiteStore) CreateReport(ctx context.Context, report *model.AccuracyReport) error {
	fillReportDefaults(report)

	secJSON, confJSON, discJSON, err := marshalReportJSON(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accuracy_reports (id, project_id, metric, primary_source, primary_value, secondary_values, confidence, discrepancies, is_accurate, checked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.ProjectID, report.Metric, string(report.PrimarySource), report.PrimaryValue,
		string(secJSON), string(confJSON), string(discJSON), report.IsAccurate, report.CheckedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert report for %s/%s", report.ProjectID, report.Metric)
}

// CreateReports inserts reports inside one transaction. Returns the number
// of rows written.
func (s *SQLiteStore) CreateReports(ctx context.Context, reports []model.AccuracyReport) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk insert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO accuracy_reports (id, project_id, metric, primary_source, primary_value, secondary_values, confidence, discrepancies, is_accurate, checked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare bulk insert")
	}
	defer stmt.Close()

	for i := range reports {
		fillReportDefaults(&reports[i])
		secJSON, confJSON, discJSON, err := marshalReportJSON(&reports[i])
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal report %d", i)
		}
		r := reports[i]
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.ProjectID, r.Metric, string(r.PrimarySource), r.PrimaryValue,
			string(secJSON), string(confJSON), string(discJSON), r.IsAccurate, r.CheckedAt.UTC(),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: bulk insert report %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk insert")
	}
	return len(reports), nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.AccuracyReport, error) {
	query := `SELECT id, project_id, metric, primary_source, primary_value, secondary_values, confidence, discrepancies, is_accurate, checked_at FROM accuracy_reports WHERE 1=1`
	var args []any

	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if filter.Metric != "" {
		query += ` AND metric = ?`
		args = append(args, filter.Metric)
	}
	if !filter.From.IsZero() {
		query += ` AND checked_at >= ?`
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query += ` AND checked_at <= ?`
		args = append(args, filter.To.UTC())
	}
	query += ` ORDER BY checked_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var reports []model.AccuracyReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

func (s *SQLiteStore) DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM accuracy_reports WHERE checked_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete reports before cutoff")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanReport(row scannable) (*model.AccuracyReport, error) {
	var r model.AccuracyReport
	var source, confJSON string
	var secJSON, discJSON sql.NullString

	err := row.Scan(&r.ID, &r.ProjectID, &r.Metric, &source, &r.PrimaryValue, &secJSON, &confJSON, &discJSON, &r.IsAccurate, &r.CheckedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan report")
	}

	r.PrimarySource = model.DataSource(source)
	if err := json.Unmarshal([]byte(confJSON), &r.Confidence); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal confidence")
	}
	if secJSON.Valid {
		if err := json.Unmarshal([]byte(secJSON.String), &r.SecondaryValues); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal secondary values")
		}
	}
	if discJSON.Valid {
		if err := json.Unmarshal([]byte(discJSON.String), &r.Discrepancies); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal discrepancies")
		}
	}
	return &r, nil
}
