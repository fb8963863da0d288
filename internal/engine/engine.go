package engine

import (
	"context"
	"hash/fnv"
	"io"
	"time"

	"csvprof/domain/core"
	"csvprof/domain/profile"
	"csvprof/internal"
	"csvprof/internal/classify"
	"csvprof/internal/config"
	"csvprof/internal/correlate"
	"csvprof/internal/errors"
	"csvprof/internal/outliers"
	"csvprof/internal/quality"
	"csvprof/internal/sampling"
	"csvprof/internal/stream"
	"csvprof/ports"
)

// categoricalKeyCap bounds distinct keys any frequency table retains,
// matching the distinct-count cap of the accumulators.
const categoricalKeyCap = 100000

// Engine is the run orchestrator: it plans sampling, classifies the column
// types from a bounded prefix, streams the source once through the
// accumulator graph, then runs the outlier, correlation and quality passes
// over the sealed summaries. It holds configuration only; every call to
// Profile builds fresh collaborators, so runs never leak state into each
// other.
type Engine struct {
	cfg    config.EngineConfig
	depth  sampling.Depth
	logger *internal.Logger
}

// NewEngine creates a new Engine
func NewEngine(cfg config.EngineConfig, depth sampling.Depth, logger *internal.Logger) *Engine {
	if depth == "" {
		depth = sampling.DepthStandard
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Engine{cfg: cfg, depth: depth, logger: logger}
}

var _ ports.Profiler = (*Engine)(nil)

// Profile runs one complete profiling pass over the source
func (e *Engine) Profile(ctx context.Context, source ports.RowSource) (*profile.Report, error) {
	start := time.Now()

	if e.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RunTimeout)
		defer cancel()
	}

	meta, err := source.Meta(ctx)
	if err != nil {
		return nil, errors.SourceError("reading source metadata", err)
	}
	if len(meta.Headers) == 0 {
		return nil, core.ErrNoColumns
	}
	if meta.RowCount == 0 {
		return nil, core.ErrEmptyDataset
	}

	columns, err := e.classify(ctx, source, meta.Headers)
	if err != nil {
		return nil, err
	}

	plan := sampling.NewSelector(
		e.cfg.SamplingLowThreshold,
		e.cfg.SamplingHighThreshold,
		e.cfg.MaxSampleSize,
	).Plan(meta.RowCount, e.depth)

	e.logger.Info("profiling %s: %d columns, %d rows, sampling=%s stride=%d",
		meta.Name, len(columns), meta.RowCount, plan.Method, plan.Stride)

	accs, consumed, sourceRows, err := e.accumulate(ctx, source, columns, plan)
	if err != nil {
		return nil, err
	}
	if sourceRows == 0 {
		return nil, core.ErrEmptyDataset
	}
	if plan.SourceRows < 0 {
		// the source could not report its size up front; record what we saw
		plan.SourceRows = sourceRows
		plan.TargetSize = consumed
		plan.Rate = 1.0
	}

	marker := plan.Marker()
	summaries := make([]profile.ColumnSummary, len(accs))
	for i, acc := range accs {
		summaries[i] = acc.Finalize(marker)
	}

	outlierReports, err := e.detectOutliers(accs, summaries)
	if err != nil {
		return nil, err
	}

	allPairs, topPairs, err := e.correlate(ctx, accs)
	if err != nil {
		return nil, err
	}

	qualityReport, err := quality.NewScorer(e.cfg.ClassifyThreshold).Score(quality.Input{
		Columns:  summaries,
		Outliers: outlierReports,
		AsOf:     time.Now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "scoring data quality")
	}

	report := profile.NewReport(core.RunID(core.NewID()))
	report.Duration = time.Since(start)
	report.Dataset = profile.DatasetInfo{
		Source:      meta.Name,
		RowCount:    sourceRows,
		ColumnCount: len(columns),
		ByteSize:    meta.ByteSize,
		MissingRate: overallMissingRate(summaries),
		Fingerprint: core.ComputeDatasetFingerprint(meta.Headers, sourceRows),
	}
	report.Sampling = plan
	report.Columns = summaries
	report.Outliers = outlierReports
	report.Correlations = allPairs
	report.TopPairs = topPairs
	report.Quality = *qualityReport

	e.logger.Info("profiled %s in %s: quality %.1f (%s), %d outlier columns, %d correlation pairs",
		meta.Name, report.Duration.Round(time.Millisecond), report.Quality.Composite,
		report.Quality.Grade, len(outlierReports), len(allPairs))

	return report, nil
}

// classify reads a bounded prefix of the stream, infers the column types,
// then rewinds the source for the full pass.
func (e *Engine) classify(ctx context.Context, source ports.RowSource, headers []string) ([]profile.Column, error) {
	sample := make([]profile.Row, 0, e.cfg.ClassifySampleRows)
	for len(sample) < e.cfg.ClassifySampleRows {
		row, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.SourceError("reading classification sample", err)
		}
		sample = append(sample, row)
	}
	if len(sample) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if err := source.Reset(ctx); err != nil {
		return nil, errors.SourceError("rewinding source after classification", err)
	}

	classifier := classify.NewClassifier(e.cfg.ClassifyThreshold, e.cfg.CategoricalMaxRatio)
	return classifier.Classify(headers, sample), nil
}

// accumulate streams every admitted row through the per-column accumulators.
// It checks for cancellation between batches, never per row.
func (e *Engine) accumulate(ctx context.Context, source ports.RowSource, columns []profile.Column, plan profile.SamplingPlan) ([]*stream.ColumnAccumulator, int64, int64, error) {
	accs := make([]*stream.ColumnAccumulator, len(columns))
	for i, col := range columns {
		accs[i] = stream.NewColumnAccumulator(col, stream.AccumulatorParams{
			ExactSortThreshold:  e.cfg.ExactSortThreshold,
			ReservoirCapacity:   e.cfg.ReservoirCapacity,
			CategoricalMaxRatio: e.cfg.CategoricalMaxRatio,
			CategoricalMaxKeys:  categoricalKeyCap,
			Seed:                columnSeed(col.Name),
			DistinctCap:         plan.TargetSize,
		})
	}

	var rowIdx, consumed int64
	for {
		if rowIdx%int64(e.cfg.BatchSize) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, 0, errors.RunAborted(err)
			}
		}

		row, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, errors.SourceError("reading row stream", err)
		}

		if plan.Admit(rowIdx) {
			for i, col := range columns {
				accs[i].Observe(row[col.Name], rowIdx)
			}
			consumed++
		}
		rowIdx++
	}

	return accs, consumed, rowIdx, nil
}

// detectOutliers runs the three-rule detector over every numeric column,
// using the rows the quantile estimator retained.
func (e *Engine) detectOutliers(accs []*stream.ColumnAccumulator, summaries []profile.ColumnSummary) ([]profile.OutlierReport, error) {
	detector := outliers.NewDetector(e.cfg.MaxOutlierRows)

	var reports []profile.OutlierReport
	for i, acc := range accs {
		numeric := summaries[i].Numeric
		if numeric == nil || numeric.Quantiles == nil {
			continue
		}
		values, indices := acc.Quantiles().Retained()
		rep, err := detector.Detect(summaries[i].Column.Key, values, indices, numeric, numeric.Quantiles)
		if err != nil {
			return nil, errors.Wrapf(err, "detecting outliers in column %s", summaries[i].Column.Name)
		}
		reports = append(reports, *rep)
	}
	return reports, nil
}

// correlate computes pairwise Pearson over the row-aligned numeric vectors
func (e *Engine) correlate(ctx context.Context, accs []*stream.ColumnAccumulator) ([]profile.CorrelationPair, []profile.CorrelationPair, error) {
	var vectors []correlate.ColumnVector
	for _, acc := range accs {
		col := acc.Column()
		if !col.Type.IsNumeric() {
			continue
		}
		vectors = append(vectors, correlate.ColumnVector{
			Key:    col.Key,
			Values: acc.Vector(),
		})
	}

	all, top, err := correlate.NewEngine(e.cfg.TopCorrelations).Compute(ctx, vectors)
	if err != nil {
		return nil, nil, errors.Wrap(err, "computing correlations")
	}
	return all, top, nil
}

func overallMissingRate(summaries []profile.ColumnSummary) float64 {
	var observed, missing int64
	for _, s := range summaries {
		observed += s.Count
		missing += s.MissingCount
	}
	total := observed + missing
	if total == 0 {
		return 0
	}
	return float64(missing) / float64(total)
}

// columnSeed derives a stable per-column seed so sampled quantile runs are
// reproducible for the same dataset shape.
func columnSeed(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}
