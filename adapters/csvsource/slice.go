package csvsource

import (
	"context"
	"io"

	"csvprof/domain/profile"
	"csvprof/ports"
)

// SliceSource serves rows already held in memory. It backs the API's inline
// profiling endpoint and keeps engine tests free of fixture files.
type SliceSource struct {
	name    string
	headers []string
	rows    []profile.Row
	pos     int
}

// NewSliceSource creates a source over in-memory rows
func NewSliceSource(name string, headers []string, rows []profile.Row) *SliceSource {
	return &SliceSource{name: name, headers: headers, rows: rows}
}

// Meta describes the in-memory dataset
func (s *SliceSource) Meta(ctx context.Context) (ports.SourceMeta, error) {
	return ports.SourceMeta{
		Name:     s.name,
		RowCount: int64(len(s.rows)),
		Headers:  s.headers,
	}, nil
}

// Next returns the next row, or io.EOF past the end
func (s *SliceSource) Next(ctx context.Context) (profile.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// Reset rewinds to the first row
func (s *SliceSource) Reset(ctx context.Context) error {
	s.pos = 0
	return nil
}

// Close is a no-op for in-memory sources
func (s *SliceSource) Close() error { return nil }
