package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"csvprof/domain/core"
	"csvprof/domain/profile"
	"csvprof/internal/errors"
	"csvprof/ports"
)

// Schema is the DDL the store expects. The report body is stored as JSONB;
// the scalar columns exist only to make listings cheap.
const Schema = `
CREATE TABLE IF NOT EXISTS profile_reports (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	source       TEXT NOT NULL,
	row_count    BIGINT NOT NULL,
	column_count INTEGER NOT NULL,
	composite    DOUBLE PRECISION NOT NULL,
	grade        TEXT NOT NULL,
	body         JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profile_reports_source ON profile_reports (source, created_at DESC);
`

// reportStore implements ports.ReportStore on postgres
type reportStore struct {
	db *sqlx.DB
}

// NewReportStore creates a postgres-backed report store
func NewReportStore(db *sqlx.DB) ports.ReportStore {
	return &reportStore{db: db}
}

// Migrate applies the store schema
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return errors.StoreError("applying report store schema", err)
	}
	return nil
}

// Save persists a finished report
func (s *reportStore) Save(ctx context.Context, report *profile.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return errors.StoreError("marshaling report body", err)
	}

	query := `INSERT INTO profile_reports (
		id, run_id, source, row_count, column_count, composite, grade, body, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body`

	_, err = s.db.ExecContext(ctx, query,
		report.ID.String(), report.RunID.String(), report.Dataset.Source,
		report.Dataset.RowCount, report.Dataset.ColumnCount,
		report.Quality.Composite, string(report.Quality.Grade),
		body, report.CreatedAt.Time(),
	)
	if err != nil {
		return errors.StoreError("saving report", err)
	}
	return nil
}

// Get retrieves a report by ID
func (s *reportStore) Get(ctx context.Context, id core.ReportID) (*profile.Report, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM profile_reports WHERE id = $1`, id.String(),
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, core.ErrReportNotFound
	}
	if err != nil {
		return nil, errors.StoreError("loading report", err)
	}

	var report profile.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, errors.StoreError("unmarshaling report body", err)
	}
	return &report, nil
}

// List returns lightweight report summaries, newest first
func (s *reportStore) List(ctx context.Context, filters ports.ReportFilters) ([]ports.ReportSummary, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, run_id, source, row_count, column_count, composite, grade, created_at
		FROM profile_reports`
	args := []interface{}{}
	if filters.Source != "" {
		query += ` WHERE source = $1`
		args = append(args, filters.Source)
	}
	query += ` ORDER BY created_at DESC`
	query += ` LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, filters.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreError("listing reports", err)
	}
	defer rows.Close()

	var summaries []ports.ReportSummary
	for rows.Next() {
		var (
			sum       ports.ReportSummary
			id, runID string
			grade     string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &runID, &sum.Source, &sum.RowCount,
			&sum.ColumnCount, &sum.Composite, &grade, &createdAt); err != nil {
			return nil, errors.StoreError("scanning report summary", err)
		}
		sum.ID = core.ReportID(id)
		sum.RunID = core.RunID(runID)
		sum.Grade = profile.QualityBand(grade)
		sum.CreatedAt = core.NewTimestamp(createdAt)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("iterating report summaries", err)
	}
	return summaries, nil
}

// Delete removes a stored report
func (s *reportStore) Delete(ctx context.Context, id core.ReportID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM profile_reports WHERE id = $1`, id.String())
	if err != nil {
		return errors.StoreError("deleting report", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return core.ErrReportNotFound
	}
	return nil
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
