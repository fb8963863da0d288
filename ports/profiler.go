package ports

import (
	"context"

	"csvprof/domain/profile"
)

// Profiler runs one complete profiling pass over a row source and returns
// the multi-section report. Implementations own no state between calls;
// each invocation builds a fresh accumulator graph.
type Profiler interface {
	Profile(ctx context.Context, source RowSource) (*profile.Report, error)
}
