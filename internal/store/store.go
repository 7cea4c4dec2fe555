package store

import (
	"context"
	"time"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// ReportFilter specifies criteria for listing accuracy reports.
type ReportFilter struct {
	ProjectID string    `json:"project_id,omitempty"`
	Metric    string    `json:"metric,omitempty"`
	From      time.Time `json:"from,omitempty"`
	To        time.Time `json:"to,omitempty"`
	Limit     int       `json:"limit,omitempty"`
}

// Store defines the persistence interface for accuracy reports. Reports are
// append-only: a new check is a new row, never an update of an old one.
type Store interface {
	CreateReport(ctx context.Context, report *model.AccuracyReport) error
	CreateReports(ctx context.Context, reports []model.AccuracyReport) (int, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.AccuracyReport, error)
	DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
