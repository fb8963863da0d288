package correlate

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

const significanceLevel = 0.05

// minPairSample is the smallest shared-row count for which the t-statistic
// has at least one degree of freedom.
const minPairSample = 3

// ColumnVector is one numeric column's row-aligned values, NaN for missing
type ColumnVector struct {
	Key    core.ColumnKey
	Values []float64
}

// Engine computes pairwise-complete Pearson correlations over the numeric
// columns of a finished run. Pairs are independent read-only computations
// over sealed vectors, so they fan out over a bounded worker group.
type Engine struct {
	topN int
}

// NewEngine creates a correlation engine returning topN ranked pairs
func NewEngine(topN int) *Engine {
	return &Engine{topN: topN}
}

// Compute returns the complete upper-triangular pair set (no self-pairs,
// no duplicates) and the ranked top-|r| list.
func (e *Engine) Compute(ctx context.Context, columns []ColumnVector) ([]profile.CorrelationPair, []profile.CorrelationPair, error) {
	var pairs []profile.CorrelationPair
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			pairs = append(pairs, profile.NewCorrelationPair(columns[i].Key, columns[j].Key))
		}
	}
	if len(pairs) == 0 {
		return nil, nil, nil
	}

	byKey := make(map[core.ColumnKey][]float64, len(columns))
	for _, col := range columns {
		byKey[col.Key] = col.Values
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for idx := range pairs {
		idx := idx
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			p := &pairs[idx]
			computePair(p, byKey[p.ColumnA], byKey[p.ColumnB])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return pairs, e.rank(pairs), nil
}

// computePair fills in r, n, p-value and significance for one pair.
// Only rows where both values are present participate; missingness in
// other columns is irrelevant to this pair.
func computePair(p *profile.CorrelationPair, x, y []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	count := 0
	var sumX, sumY, sumXY, sX2, sY2 float64
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		count++
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sX2 += x[i] * x[i]
		sY2 += y[i] * y[i]
	}

	p.SampleSize = count
	if count < minPairSample {
		p.Computable = false
		p.Reason = "fewer than 3 pairwise-complete rows"
		return
	}

	fc := float64(count)
	varX := fc*sX2 - sumX*sumX
	varY := fc*sY2 - sumY*sumY
	if varX <= 0 || varY <= 0 {
		// Constant column: correlation is undefined, never reported as 0
		p.Computable = false
		p.Reason = "constant column over shared rows"
		return
	}

	r := (fc*sumXY - sumX*sumY) / math.Sqrt(varX*varY)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}

	p.R = r
	p.Computable = true
	p.PValue = pairPValue(r, count)
	p.Significant = p.PValue < significanceLevel
}

// pairPValue derives a two-tailed p-value from the t statistic
// t = r * sqrt((n-2)/(1-r^2)) against Student's t with n-2 degrees of freedom.
func pairPValue(r float64, n int) float64 {
	df := float64(n - 2)
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := math.Abs(r) * math.Sqrt(df/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(t)
	if p > 1 {
		p = 1
	}
	return p
}

// rank orders computable pairs by |r| descending; ties break toward the
// larger pairwise sample, then lexical column names, so report fixtures
// are reproducible.
func (e *Engine) rank(pairs []profile.CorrelationPair) []profile.CorrelationPair {
	ranked := make([]profile.CorrelationPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Computable {
			ranked = append(ranked, p)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := math.Abs(ranked[i].R), math.Abs(ranked[j].R)
		if ai != aj {
			return ai > aj
		}
		if ranked[i].SampleSize != ranked[j].SampleSize {
			return ranked[i].SampleSize > ranked[j].SampleSize
		}
		if ranked[i].ColumnA != ranked[j].ColumnA {
			return ranked[i].ColumnA.String() < ranked[j].ColumnA.String()
		}
		return ranked[i].ColumnB.String() < ranked[j].ColumnB.String()
	})

	if e.topN > 0 && len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	return ranked
}
