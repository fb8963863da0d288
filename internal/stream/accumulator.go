package stream

import (
	"math"
	"strconv"
	"strings"
	"time"

	"csvprof/domain/profile"
)

// defaultDistinctCap bounds per-column distinct tracking when the run has
// no sampling plan to size it from; beyond the cap the unique count stops
// growing rather than the map.
const defaultDistinctCap = 100000

// ColumnAccumulator routes one column's values to the accumulators its
// classified type needs and assembles the ColumnSummary at the end. One
// instance exists per column per run; nothing is shared across runs.
type ColumnAccumulator struct {
	column      profile.Column
	missing     int64
	count       int64
	distinct    map[string]struct{}
	distinctCap int64

	moments  *MomentAccumulator
	quantile *QuantileEstimator
	category *CategoricalAnalyzer
	dates    *DateAccumulator
	booleans *BooleanAccumulator
	text     *TextAccumulator

	// vector holds the column's numeric values in sampled-row order with
	// NaN for missing, feeding the correlation and outlier passes. Its
	// length is bounded by the sampling plan's target size.
	vector []float64
}

// AccumulatorParams carries the estimator tuning shared by all columns of a run
type AccumulatorParams struct {
	ExactSortThreshold  int
	ReservoirCapacity   int
	CategoricalMaxRatio float64
	CategoricalMaxKeys  int
	Seed                int64

	// DistinctCap bounds the distinct-value map. A column can never hold
	// more distinct values than the rows the plan admits, so callers pass
	// the plan's target size; zero or negative falls back to the default.
	DistinctCap int64
}

// NewColumnAccumulator builds the accumulator graph for one classified column
func NewColumnAccumulator(column profile.Column, params AccumulatorParams) *ColumnAccumulator {
	limit := params.DistinctCap
	if limit <= 0 {
		limit = defaultDistinctCap
	}
	acc := &ColumnAccumulator{
		column:      column,
		distinct:    make(map[string]struct{}),
		distinctCap: limit,
	}

	switch {
	case column.Type.IsNumeric():
		acc.moments = NewMomentAccumulator()
		acc.quantile = NewQuantileEstimator(params.ExactSortThreshold, params.ReservoirCapacity, params.Seed)
	case column.Type == profile.TypeCategorical:
		acc.category = NewCategoricalAnalyzer(params.CategoricalMaxRatio, params.CategoricalMaxKeys)
	case column.Type == profile.TypeDate:
		acc.dates = NewDateAccumulator()
	case column.Type == profile.TypeBoolean:
		acc.booleans = NewBooleanAccumulator()
	default:
		// identifier and text columns share the text accumulator
		acc.text = NewTextAccumulator()
	}

	return acc
}

// Column returns the classified column this accumulator serves
func (a *ColumnAccumulator) Column() profile.Column { return a.column }

// Observe consumes one cell. rowIdx is the original row index in the
// source. A value the column's type cannot hold counts as missing;
// Observe never fails.
func (a *ColumnAccumulator) Observe(v interface{}, rowIdx int64) {
	if v == nil {
		a.observeMissing()
		return
	}

	switch {
	case a.column.Type.IsNumeric():
		f, ok := coerceFloat(v)
		if !ok || math.IsNaN(f) {
			a.observeMissing()
			return
		}
		a.moments.Add(f)
		a.quantile.Add(f, rowIdx)
		a.vector = append(a.vector, f)
		a.markDistinct(strconv.FormatFloat(f, 'g', -1, 64))
		a.count++

	case a.column.Type == profile.TypeCategorical:
		s, ok := coerceString(v)
		if !ok {
			a.observeMissing()
			return
		}
		a.category.Add(s)
		a.markDistinct(s)
		a.count++

	case a.column.Type == profile.TypeDate:
		t, ok := coerceTime(v)
		if !ok {
			a.observeMissing()
			return
		}
		a.dates.Add(t)
		a.markDistinct(t.Format(time.RFC3339Nano))
		a.count++

	case a.column.Type == profile.TypeBoolean:
		b, ok := coerceBool(v)
		if !ok {
			a.observeMissing()
			return
		}
		a.booleans.Add(b)
		a.markDistinct(strconv.FormatBool(b))
		a.count++

	default:
		s, ok := coerceString(v)
		if !ok {
			a.observeMissing()
			return
		}
		a.text.Add(s)
		a.markDistinct(s)
		a.count++
	}
}

func (a *ColumnAccumulator) observeMissing() {
	a.missing++
	if a.column.Type.IsNumeric() {
		// keep the vector row-aligned across columns
		a.vector = append(a.vector, math.NaN())
	}
}

func (a *ColumnAccumulator) markDistinct(key string) {
	if int64(len(a.distinct)) >= a.distinctCap {
		return
	}
	a.distinct[key] = struct{}{}
}

// Vector returns the row-aligned numeric values (NaN for missing).
// Empty for non-numeric columns.
func (a *ColumnAccumulator) Vector() []float64 { return a.vector }

// Moments exposes the numeric moment accumulator, nil for other types
func (a *ColumnAccumulator) Moments() *MomentAccumulator { return a.moments }

// Quantiles exposes the quantile estimator, nil for other types
func (a *ColumnAccumulator) Quantiles() *QuantileEstimator { return a.quantile }

// Finalize seals the accumulators and assembles the column summary.
// marker records whether this run's stream was exact or sampled.
func (a *ColumnAccumulator) Finalize(marker profile.Marker) profile.ColumnSummary {
	summary := profile.ColumnSummary{
		Column:       a.column,
		Count:        a.count,
		MissingCount: a.missing,
		UniqueCount:  int64(len(a.distinct)),
	}

	switch {
	case a.column.Type.IsNumeric():
		numeric := a.moments.Finalize(marker)
		if a.moments.Count() > 0 {
			a.quantile.SetExactBounds(a.moments.Min(), a.moments.Max())
		}
		if set, err := a.quantile.Snapshot(); err == nil {
			numeric.Quantiles = set
		}
		summary.Numeric = numeric

	case a.column.Type == profile.TypeCategorical:
		if cat, err := a.category.Finalize(marker); err == nil {
			summary.Categorical = cat
		}

	case a.column.Type == profile.TypeDate:
		if ds, err := a.dates.Finalize(); err == nil {
			summary.Date = ds
		}

	case a.column.Type == profile.TypeBoolean:
		if bs, err := a.booleans.Finalize(); err == nil {
			summary.Boolean = bs
		}

	default:
		if ts, err := a.text.Finalize(); err == nil {
			summary.Text = ts
		}
	}

	return summary
}

// Value coercion helpers. Row sources deliver typed values but CSV-backed
// ones deliver strings, so each accumulator path accepts both.

func coerceFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coerceBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "1":
			return true, true
		case "false", "f", "no", "n", "0":
			return false, true
		}
	}
	return false, false
}

var acceptedLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-Jan-2006",
}

func coerceTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range acceptedLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func coerceString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	}
	return "", false
}
