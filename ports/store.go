package ports

import (
	"context"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

// ReportFilters narrows report listings
type ReportFilters struct {
	Source string
	Limit  int
	Offset int
}

// ReportSummary is the lightweight listing row for stored reports
type ReportSummary struct {
	ID          core.ReportID
	RunID       core.RunID
	Source      string
	RowCount    int64
	ColumnCount int
	Composite   float64
	Grade       profile.QualityBand
	CreatedAt   core.Timestamp
}

// ReportStore is a caller-owned store for finished reports. The profiling
// engine never touches it; callers decide whether and where results persist,
// which keeps the engine itself stateless between invocations.
type ReportStore interface {
	Save(ctx context.Context, report *profile.Report) error
	Get(ctx context.Context, id core.ReportID) (*profile.Report, error)
	List(ctx context.Context, filters ReportFilters) ([]ReportSummary, error)
	Delete(ctx context.Context, id core.ReportID) error
}
