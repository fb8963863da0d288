package outliers

import (
	"math"
	"math/rand"
	"testing"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

// summarize builds the numeric summary and quantile set the detector
// expects, from raw values, the way the accumulators would.
func summarize(values []float64) (*profile.NumericSummary, *profile.QuantileSet) {
	n := float64(len(values))
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	quantile := func(p float64) float64 {
		rank := p / 100 * (n - 1)
		lo := int(math.Floor(rank))
		hi := int(math.Ceil(rank))
		if lo == hi {
			return sorted[lo]
		}
		return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
	}

	q1, q3 := quantile(25), quantile(75)
	return &profile.NumericSummary{
			Count:    int64(len(values)),
			Mean:     profile.ExactStat(mean),
			Variance: profile.ExactStat(variance),
			StdDev:   profile.ExactStat(math.Sqrt(variance)),
		}, &profile.QuantileSet{
			Q1: q1, Median: quantile(50), Q3: q3, IQR: q3 - q1,
			Source: profile.MarkerExact,
			Basis:  len(values),
			Seen:   int64(len(values)),
		}
}

func indicesFor(values []float64) []int64 {
	idx := make([]int64, len(values))
	for i := range idx {
		idx[i] = int64(i)
	}
	return idx
}

func TestDetectSingleExtremeValue(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 1000}
	summary, quantiles := summarize(values)

	rep, err := NewDetector(100).Detect("amount", values, indicesFor(values), summary, quantiles)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	// fences from Q1=2.25, Q3=4.75: [-1.5, 8.5] and extreme [-5.25, 12.25]
	if rep.IQR.Count != 1 {
		t.Errorf("iqr count = %d, want 1", rep.IQR.Count)
	}
	if rep.ExtremeCount != 1 {
		t.Errorf("extreme count = %d, want 1", rep.ExtremeCount)
	}

	// the huge value inflates sigma enough that |z| stays under 3
	if rep.ZScore.Skipped || rep.ZScore.Count != 0 {
		t.Errorf("zscore = %+v, want applied with 0 hits", rep.ZScore)
	}

	// MAD is robust to the outlier it hunts
	if rep.MAD.Skipped || rep.MAD.Count != 1 {
		t.Errorf("mad = %+v, want applied with 1 hit", rep.MAD)
	}

	if rep.UnionCount != 1 {
		t.Errorf("union = %d, want 1 (methods flag the same row)", rep.UnionCount)
	}
	if len(rep.RowIndices) != 1 || rep.RowIndices[0] != 5 {
		t.Errorf("row indices = %v, want [5]", rep.RowIndices)
	}
	if rep.Basis != profile.MarkerExact {
		t.Errorf("basis = %s, want exact", rep.Basis)
	}
}

func TestDetectConstantColumnSkipsSpreadRules(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5}
	summary, quantiles := summarize(values)

	rep, err := NewDetector(100).Detect("flat", values, indicesFor(values), summary, quantiles)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if !rep.ZScore.Skipped {
		t.Error("zscore must be skipped when stddev is 0")
	}
	if !rep.MAD.Skipped {
		t.Error("mad must be skipped when MAD is 0")
	}
	if rep.IQR.Count != 0 || rep.UnionCount != 0 {
		t.Errorf("constant column flagged %d iqr / %d union, want 0/0", rep.IQR.Count, rep.UnionCount)
	}
}

func TestDetectUnionNeverExceedsMethodSum(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	values := make([]float64, 500)
	for i := range values {
		values[i] = rng.NormFloat64() * 10
	}
	// salt in a handful of outliers
	values[7] = 500
	values[42] = -500
	values[99] = 800

	summary, quantiles := summarize(values)
	rep, err := NewDetector(1000).Detect("noisy", values, indicesFor(values), summary, quantiles)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	sum := rep.IQR.Count + rep.ZScore.Count + rep.MAD.Count
	if rep.UnionCount > sum {
		t.Errorf("union %d exceeds method sum %d", rep.UnionCount, sum)
	}
	if rep.UnionCount < 3 {
		t.Errorf("union = %d, planted 3 obvious outliers", rep.UnionCount)
	}
}

func TestDetectIgnoresNaNRows(t *testing.T) {
	values := []float64{1, 2, math.NaN(), 4, 5, 1000}
	clean := []float64{1, 2, 4, 5, 1000}
	summary, quantiles := summarize(clean)

	rep, err := NewDetector(100).Detect("gappy", values, indicesFor(values), summary, quantiles)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	for _, idx := range rep.RowIndices {
		if idx == 2 {
			t.Error("NaN row must never be flagged")
		}
	}
}

func TestDetectRowIndexCap(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 1
	}
	// a block of rows far outside any fence
	for i := 85; i < 100; i++ {
		values[i] = 1e6
	}
	// spread so IQR is nonzero and fences are meaningful
	values[0], values[1] = 0, 2

	summary, quantiles := summarize(values)
	rep, err := NewDetector(10).Detect("wide", values, indicesFor(values), summary, quantiles)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(rep.RowIndices) > 10 {
		t.Errorf("retained %d row indices, cap is 10", len(rep.RowIndices))
	}
	if rep.UnionCount > 10 && !rep.Truncated {
		t.Error("truncation flag must be set when union exceeds the cap")
	}
}

func TestDetectInputValidation(t *testing.T) {
	d := NewDetector(10)
	if _, err := d.Detect("x", []float64{1}, []int64{0}, nil, nil); err != core.ErrInsufficientData {
		t.Errorf("nil summary error = %v, want ErrInsufficientData", err)
	}

	summary, quantiles := summarize([]float64{1, 2, 3})
	if _, err := d.Detect("x", []float64{1, 2}, []int64{0}, summary, quantiles); err == nil {
		t.Error("expected error for mismatched values/indices lengths")
	}
}
