package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ranksignal/accuracy-cli/internal/db"
	"github.com/ranksignal/accuracy-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"insert_report": `INSERT INTO accuracy_reports (id, project_id, metric, primary_source, primary_value, secondary_values, confidence, discrepancies, is_accurate, checked_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
	"prune_reports": `DELETE FROM accuracy_reports WHERE checked_at < $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS accuracy_reports (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL,
	metric           TEXT NOT NULL,
	primary_source   TEXT NOT NULL,
	primary_value    DOUBLE PRECISION NOT NULL,
	secondary_values JSONB,
	confidence       JSONB NOT NULL,
	discrepancies    JSONB,
	is_accurate      BOOLEAN NOT NULL,
	checked_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accuracy_reports_project ON accuracy_reports(project_id);
CREATE INDEX IF NOT EXISTS idx_accuracy_reports_project_metric ON accuracy_reports(project_id, metric);
CREATE INDEX IF NOT EXISTS idx_accuracy_reports_checked_at ON accuracy_reports(checked_at);
CREATE INDEX IF NOT EXISTS idx_accuracy_reports_project_checked ON accuracy_reports(project_id, checked_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// CreateReport persists one built report. An empty ID or zero CheckedAt is
// filled in before the insert.
func (s *PostgresStore) CreateReport(ctx context.Context, report *model.AccuracyReport) error {
	fillReportDefaults(report)

	secJSON, confJSON, discJSON, err := marshalReportJSON(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO accuracy_reports (id, project_id, metric, primary_source, primary_value, secondary_values, confidence, discrepancies, is_accurate, checked_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		report.ID, report.ProjectID, report.Metric, string(report.PrimarySource), report.PrimaryValue,
		secJSON, confJSON, discJSON, report.IsAccurate, report.CheckedAt,
	)
	return eris.Wrapf(err, "postgres: insert report for %s/%s", report.ProjectID, report.Metric)
}

// CreateReports bulk-inserts reports via the COPY protocol. Returns the
// number of rows written.
func (s *PostgresStore) CreateReports(ctx context.Context, reports []model.AccuracyReport) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}

	columns := []string{"id", "project_id", "metric", "primary_source", "primary_value", "secondary_values", "confidence", "discrepancies", "is_accurate", "checked_at"}
	rows := make([][]any, 0, len(reports))
	for i := range reports {
		fillReportDefaults(&reports[i])
		secJSON, confJSON, discJSON, err := marshalReportJSON(&reports[i])
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal report %d", i)
		}
		r := reports[i]
		rows = append(rows, []any{r.ID, r.ProjectID, r.Metric, string(r.PrimarySource), r.PrimaryValue, secJSON, confJSON, discJSON, r.IsAccurate, r.CheckedAt})
	}

	n, err := db.CopyFrom(ctx, s.pool, "accuracy_reports", columns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert reports")
	}
	return int(n), nil
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.AccuracyReport, error) {
	query := `SELECT id, project_id, metric, primary_source, primary_value, secondary_values, confidence, discrepancies, is_accurate, checked_at FROM accuracy_reports WHERE true`
	args := []any{}
	argIdx := 1

	if filter.ProjectID != "" {
		query += fmt.Sprintf(` AND project_id = $%d`, argIdx)
		args = append(args, filter.ProjectID)
		argIdx++
	}
	if filter.Metric != "" {
		query += fmt.Sprintf(` AND metric = $%d`, argIdx)
		args = append(args, filter.Metric)
		argIdx++
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(` AND checked_at >= $%d`, argIdx)
		args = append(args, filter.From)
		argIdx++
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(` AND checked_at <= $%d`, argIdx)
		args = append(args, filter.To)
		argIdx++
	}
	query += ` ORDER BY checked_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var reports []model.AccuracyReport
	for rows.Next() {
		var r model.AccuracyReport
		var source string
		var secJSON, discJSON *[]byte
		var confJSON []byte

		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Metric, &source, &r.PrimaryValue, &secJSON, &confJSON, &discJSON, &r.IsAccurate, &r.CheckedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		r.PrimarySource = model.DataSource(source)
		if err := json.Unmarshal(confJSON, &r.Confidence); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal confidence")
		}
		if secJSON != nil {
			if err := json.Unmarshal(*secJSON, &r.SecondaryValues); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal secondary values")
			}
		}
		if discJSON != nil {
			if err := json.Unmarshal(*discJSON, &r.Discrepancies); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal discrepancies")
			}
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}

func (s *PostgresStore) DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM accuracy_reports WHERE checked_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete reports before cutoff")
	}
	return int(tag.RowsAffected()), nil
}

// fillReportDefaults assigns an ID and CheckedAt when the caller left them
// unset. The report is otherwise stored exactly as built.
func fillReportDefaults(report *model.AccuracyReport) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CheckedAt.IsZero() {
		report.CheckedAt = time.Now().UTC()
	}
}

func marshalReportJSON(report *model.AccuracyReport) (sec, conf, disc []byte, err error) {
	if sec, err = json.Marshal(report.SecondaryValues); err != nil {
		return nil, nil, nil, eris.Wrap(err, "secondary values")
	}
	if conf, err = json.Marshal(report.Confidence); err != nil {
		return nil, nil, nil, eris.Wrap(err, "confidence")
	}
	if disc, err = json.Marshal(report.Discrepancies); err != nil {
		return nil, nil, nil, eris.Wrap(err, "discrepancies")
	}
	return sec, conf, disc, nil
}
