package ports

import (
	"context"

	"csvprof/domain/profile"
)

// SourceMeta describes a row source before it is streamed. RowCount and
// ByteSize only parameterize the sampling strategy selector; a source that
// cannot know its row count up front reports -1 and forces exact streaming.
type SourceMeta struct {
	Name     string
	RowCount int64
	ByteSize int64
	Headers  []string
}

// RowSource is the collaborator that produces typed rows. Tokenizing,
// delimiter and encoding detection happen behind this interface; the
// profiling core only ever sees typed values with nil for missing.
type RowSource interface {
	// Meta returns the source description used to plan the run
	Meta(ctx context.Context) (SourceMeta, error)

	// Next returns the next typed row, or (nil, io.EOF) at end of stream
	Next(ctx context.Context) (profile.Row, error)

	// Reset rewinds the source to the first data row. The engine reads the
	// stream twice: a bounded prefix for classification, then the full pass.
	Reset(ctx context.Context) error

	// Close releases underlying resources
	Close() error
}
