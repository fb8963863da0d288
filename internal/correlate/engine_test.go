package correlate

import (
	"context"
	"math"
	"testing"

	"csvprof/domain/profile"
)

func findPair(pairs []profile.CorrelationPair, a, b string) *profile.CorrelationPair {
	for i := range pairs {
		if string(pairs[i].ColumnA) == a && string(pairs[i].ColumnB) == b {
			return &pairs[i]
		}
	}
	return nil
}

func TestComputePerfectCorrelation(t *testing.T) {
	columns := []ColumnVector{
		{Key: "x", Values: []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		{Key: "y", Values: []float64{2, 4, 6, 8, 10, 12, 14, 16}},
	}

	all, top, err := NewEngine(10).Compute(context.Background(), columns)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("pairs = %d, want 1", len(all))
	}

	p := all[0]
	if !p.Computable {
		t.Fatalf("pair not computable: %s", p.Reason)
	}
	if math.Abs(p.R-1.0) > 1e-12 {
		t.Errorf("r = %v, want 1", p.R)
	}
	if p.SampleSize != 8 {
		t.Errorf("n = %d, want 8", p.SampleSize)
	}
	if !p.Significant {
		t.Errorf("perfect correlation over 8 rows must be significant, p = %v", p.PValue)
	}
	if len(top) != 1 {
		t.Errorf("top pairs = %d, want 1", len(top))
	}
}

func TestComputeUpperTriangleOnly(t *testing.T) {
	columns := []ColumnVector{
		{Key: "a", Values: []float64{1, 2, 3, 4}},
		{Key: "b", Values: []float64{4, 3, 2, 1}},
		{Key: "c", Values: []float64{1, 3, 2, 4}},
		{Key: "d", Values: []float64{2, 2, 3, 1}},
	}

	all, _, err := NewEngine(10).Compute(context.Background(), columns)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// k columns produce k*(k-1)/2 pairs: no self-pairs, no duplicates
	if len(all) != 6 {
		t.Fatalf("pairs = %d, want 6", len(all))
	}
	seen := make(map[string]bool)
	for _, p := range all {
		if p.ColumnA == p.ColumnB {
			t.Errorf("self-pair %s leaked into results", p.ColumnA)
		}
		if p.ColumnA.String() > p.ColumnB.String() {
			t.Errorf("pair (%s, %s) not in lexical order", p.ColumnA, p.ColumnB)
		}
		key := p.Key()
		if seen[key] {
			t.Errorf("duplicate pair %s", key)
		}
		seen[key] = true
	}
}

func TestComputePairwiseCompleteRows(t *testing.T) {
	nan := math.NaN()
	columns := []ColumnVector{
		{Key: "x", Values: []float64{1, 2, nan, 4, 5, 6}},
		{Key: "y", Values: []float64{2, 4, 6, nan, 10, 12}},
	}

	all, _, err := NewEngine(10).Compute(context.Background(), columns)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	p := all[0]
	if p.SampleSize != 4 {
		t.Errorf("n = %d, want 4 pairwise-complete rows", p.SampleSize)
	}
	if !p.Computable {
		t.Fatalf("pair not computable: %s", p.Reason)
	}
	if math.Abs(p.R-1.0) > 1e-12 {
		t.Errorf("r = %v, want 1 over the complete rows", p.R)
	}
}

func TestComputeDegeneratePairs(t *testing.T) {
	nan := math.NaN()
	columns := []ColumnVector{
		{Key: "const", Values: []float64{7, 7, 7, 7}},
		{Key: "sparse", Values: []float64{1, nan, nan, nan}},
		{Key: "real", Values: []float64{1, 2, 3, 4}},
	}

	all, top, err := NewEngine(10).Compute(context.Background(), columns)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	constReal := findPair(all, "const", "real")
	if constReal == nil {
		t.Fatal("missing const~real pair")
	}
	if constReal.Computable {
		t.Error("constant column pair must be non-computable, not r=0")
	}
	if constReal.Reason == "" {
		t.Error("non-computable pair must carry a reason")
	}

	sparseReal := findPair(all, "real", "sparse")
	if sparseReal == nil {
		t.Fatal("missing real~sparse pair")
	}
	if sparseReal.Computable {
		t.Error("pair with a single shared row must be non-computable")
	}

	// non-computable pairs stay in the full set but never rank
	for _, p := range top {
		if !p.Computable {
			t.Errorf("non-computable pair %s ranked into top list", p.Key())
		}
	}
}

func TestComputeRankingOrder(t *testing.T) {
	columns := []ColumnVector{
		{Key: "base", Values: []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		{Key: "strong", Values: []float64{2, 4, 6, 8, 10, 12, 14, 16}},
		{Key: "weak", Values: []float64{5, 1, 4, 2, 6, 3, 8, 2}},
	}

	_, top, err := NewEngine(2).Compute(context.Background(), columns)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("top = %d pairs, want truncation to 2", len(top))
	}
	if math.Abs(top[0].R) < math.Abs(top[1].R) {
		t.Errorf("top list not ordered by |r|: %v then %v", top[0].R, top[1].R)
	}
	if top[0].ColumnA != "base" || top[0].ColumnB != "strong" {
		t.Errorf("strongest pair = %s~%s, want base~strong", top[0].ColumnA, top[0].ColumnB)
	}
}

func TestComputeNoNumericColumns(t *testing.T) {
	all, top, err := NewEngine(10).Compute(context.Background(), nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if all != nil || top != nil {
		t.Error("no columns must produce empty results")
	}

	all, _, err = NewEngine(10).Compute(context.Background(), []ColumnVector{
		{Key: "only", Values: []float64{1, 2, 3}},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("single column produced %d pairs, want 0", len(all))
	}
}
