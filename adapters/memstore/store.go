package memstore

import (
	"context"
	"sort"
	"sync"

	"csvprof/domain/core"
	"csvprof/domain/profile"
	"csvprof/ports"
)

// Store is an in-memory ReportStore. It backs the API when no DATABASE_URL
// is configured and keeps adapter tests free of a running postgres.
type Store struct {
	mu      sync.RWMutex
	reports map[core.ReportID]*profile.Report
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{reports: make(map[core.ReportID]*profile.Report)}
}

var _ ports.ReportStore = (*Store)(nil)

// Save stores a report, replacing any report with the same ID
func (s *Store) Save(ctx context.Context, report *profile.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

// Get retrieves a report by ID
func (s *Store) Get(ctx context.Context, id core.ReportID) (*profile.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, core.ErrReportNotFound
	}
	return report, nil
}

// List returns summaries of stored reports, newest first
func (s *Store) List(ctx context.Context, filters ports.ReportFilters) ([]ports.ReportSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []ports.ReportSummary
	for _, r := range s.reports {
		if filters.Source != "" && r.Dataset.Source != filters.Source {
			continue
		}
		summaries = append(summaries, ports.ReportSummary{
			ID:          r.ID,
			RunID:       r.RunID,
			Source:      r.Dataset.Source,
			RowCount:    r.Dataset.RowCount,
			ColumnCount: r.Dataset.ColumnCount,
			Composite:   r.Quality.Composite,
			Grade:       r.Quality.Grade,
			CreatedAt:   r.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(summaries) {
			return nil, nil
		}
		summaries = summaries[filters.Offset:]
	}
	if filters.Limit > 0 && len(summaries) > filters.Limit {
		summaries = summaries[:filters.Limit]
	}
	return summaries, nil
}

// Delete removes a stored report
func (s *Store) Delete(ctx context.Context, id core.ReportID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return core.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}
