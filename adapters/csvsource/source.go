package csvsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"csvprof/domain/profile"
	"csvprof/internal/errors"
	"csvprof/ports"
)

// candidateDelimiters are tried in order when sniffing the header line
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// FileSource streams typed rows out of a CSV file. Delimiter detection,
// header parsing and missing-value normalization all happen here; consumers
// only ever see profile.Row values with nil for missing cells.
type FileSource struct {
	path string

	file    *os.File
	reader  *csv.Reader
	headers []string
	delim   rune

	meta       *ports.SourceMeta
	nullTokens map[string]struct{}
}

// NewFileSource creates a source for a CSV file on disk
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path: path,
		nullTokens: map[string]struct{}{
			"":     {},
			"na":   {},
			"n/a":  {},
			"null": {},
			"nil":  {},
			"none": {},
		},
	}
}

// Meta scans the file once to count rows and capture the header, then
// rewinds so Next starts at the first data row. The count is cached; the
// scan is the price of letting the sampling selector plan before streaming.
func (s *FileSource) Meta(ctx context.Context) (ports.SourceMeta, error) {
	if s.meta != nil {
		return *s.meta, nil
	}

	if err := s.open(); err != nil {
		return ports.SourceMeta{}, err
	}

	info, err := s.file.Stat()
	if err != nil {
		return ports.SourceMeta{}, errors.SourceError("stat csv file", err)
	}

	var rows int64
	for {
		if err := ctx.Err(); err != nil {
			return ports.SourceMeta{}, errors.RunAborted(err)
		}
		_, err := s.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ports.SourceMeta{}, errors.SourceError("counting csv rows", err)
		}
		rows++
	}

	s.meta = &ports.SourceMeta{
		Name:     s.path,
		RowCount: rows,
		ByteSize: info.Size(),
		Headers:  s.headers,
	}

	if err := s.Reset(ctx); err != nil {
		return ports.SourceMeta{}, err
	}
	return *s.meta, nil
}

// Next returns the next row, or io.EOF at end of file
func (s *FileSource) Next(ctx context.Context) (profile.Row, error) {
	if s.reader == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	record, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.SourceError("reading csv record", err)
	}

	row := make(profile.Row, len(s.headers))
	for i, header := range s.headers {
		if i >= len(record) {
			row[header] = nil
			continue
		}
		value := strings.TrimSpace(record[i])
		if _, null := s.nullTokens[strings.ToLower(value)]; null {
			row[header] = nil
			continue
		}
		row[header] = value
	}
	return row, nil
}

// Reset reopens the file and skips the header, positioning at the first
// data row.
func (s *FileSource) Reset(ctx context.Context) error {
	if s.file != nil {
		s.file.Close()
		s.file = nil
		s.reader = nil
	}
	return s.open()
}

// Close releases the underlying file
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	return err
}

func (s *FileSource) open() error {
	file, err := os.Open(s.path)
	if err != nil {
		return errors.SourceError("opening csv file", err)
	}

	buffered := bufio.NewReader(file)
	if s.delim == 0 {
		headerLine, err := buffered.Peek(4096)
		if err != nil && err != io.EOF {
			file.Close()
			return errors.SourceError("sniffing csv delimiter", err)
		}
		s.delim = sniffDelimiter(string(headerLine))
	}

	reader := csv.NewReader(buffered)
	reader.Comma = s.delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		file.Close()
		return errors.DatasetInvalid("csv file has no header row")
	}
	if err != nil {
		file.Close()
		return errors.SourceError("reading csv header", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	s.file = file
	s.reader = reader
	s.headers = headers
	return nil
}

// sniffDelimiter picks the candidate occurring most often in the first line
func sniffDelimiter(prefix string) rune {
	if idx := strings.IndexByte(prefix, '\n'); idx >= 0 {
		prefix = prefix[:idx]
	}

	best := ','
	bestCount := 0
	for _, candidate := range candidateDelimiters {
		count := strings.Count(prefix, string(candidate))
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}
