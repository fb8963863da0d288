package stream

import (
	"math"
	"math/rand"
	"sort"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

// QuantileEstimator answers percentile queries for one numeric column.
// Below the exact threshold it retains every value and sorts once; past the
// threshold it degrades to a fixed-capacity reservoir sample (Algorithm R)
// whose answers carry the estimated marker. Capacity is a constructor
// parameter, never grown at runtime.
type QuantileEstimator struct {
	exactThreshold int
	capacity       int
	rng            *rand.Rand

	values  []float64
	indices []int64 // original row index per retained value
	seen    int64
	sampled bool // reservoir mode engaged
	sorted  bool

	// exact bounds fed by the moment accumulator; p=0 and p=100 answer
	// from these even in reservoir mode
	exactMin float64
	exactMax float64
	bounded  bool
}

// NewQuantileEstimator creates an estimator. seed fixes the reservoir's
// random choices so a run is reproducible.
func NewQuantileEstimator(exactThreshold, capacity int, seed int64) *QuantileEstimator {
	if capacity > exactThreshold {
		capacity = exactThreshold
	}
	return &QuantileEstimator{
		exactThreshold: exactThreshold,
		capacity:       capacity,
		rng:            rand.New(rand.NewSource(seed)),
		values:         make([]float64, 0, 64),
		indices:        make([]int64, 0, 64),
	}
}

// Add consumes one value with its source row index
func (q *QuantileEstimator) Add(v float64, rowIdx int64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	q.seen++
	q.sorted = false

	if !q.sampled {
		q.values = append(q.values, v)
		q.indices = append(q.indices, rowIdx)
		if len(q.values) > q.exactThreshold {
			q.degradeToReservoir()
		}
		return
	}

	// Algorithm R: item i replaces a reservoir slot with probability k/i
	j := q.rng.Int63n(q.seen)
	if j < int64(q.capacity) {
		q.values[j] = v
		q.indices[j] = rowIdx
	}
}

// degradeToReservoir shrinks the exact buffer to a uniform sample of
// capacity items via partial Fisher-Yates, then continues with standard
// reservoir replacement. Every value seen so far keeps an equal chance
// of being retained.
func (q *QuantileEstimator) degradeToReservoir() {
	n := len(q.values)
	for i := 0; i < q.capacity; i++ {
		j := i + q.rng.Intn(n-i)
		q.values[i], q.values[j] = q.values[j], q.values[i]
		q.indices[i], q.indices[j] = q.indices[j], q.indices[i]
	}
	q.values = q.values[:q.capacity]
	q.indices = q.indices[:q.capacity]
	q.sampled = true
}

// SetExactBounds supplies the true min/max tracked by the moment pass
func (q *QuantileEstimator) SetExactBounds(min, max float64) {
	q.exactMin = min
	q.exactMax = max
	q.bounded = true
}

// Seen returns the number of values observed, retained or not
func (q *QuantileEstimator) Seen() int64 { return q.seen }

// Basis returns how many retained values answer queries
func (q *QuantileEstimator) Basis() int { return len(q.values) }

// Estimated reports whether answers come from a reservoir sample
func (q *QuantileEstimator) Estimated() bool { return q.sampled }

// Retained exposes the retained values and their row indices. The outlier
// detector scans these; in reservoir mode they are the sample, and any
// counts derived from them inherit the estimated marker.
func (q *QuantileEstimator) Retained() (values []float64, indices []int64) {
	return q.values, q.indices
}

// Quantile answers percentile p in [0, 100] by linear interpolation between
// order statistics: rank = p * (n-1) / 100, interpolated between the floor
// and ceil ranks. p=0 and p=100 always return the exact min/max when bounds
// were supplied, never a sampled or interpolated value.
func (q *QuantileEstimator) Quantile(p float64) (float64, error) {
	if len(q.values) == 0 {
		return 0, core.ErrInsufficientData
	}
	if p < 0 || p > 100 {
		return 0, core.NewValidationError("percentile", "must be in [0, 100]")
	}

	if q.bounded {
		if p == 0 {
			return q.exactMin, nil
		}
		if p == 100 {
			return q.exactMax, nil
		}
	}

	if !q.sorted {
		sortPairs(q.values, q.indices)
		q.sorted = true
	}

	n := len(q.values)
	if n == 1 {
		return q.values[0], nil
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return q.values[lo], nil
	}
	frac := rank - float64(lo)
	return q.values[lo] + frac*(q.values[hi]-q.values[lo]), nil
}

// Snapshot computes the standard percentile set for reports. Quantile
// monotonicity in p is guaranteed by interpolation over one sorted buffer.
func (q *QuantileEstimator) Snapshot() (*profile.QuantileSet, error) {
	if len(q.values) == 0 {
		return nil, core.ErrInsufficientData
	}

	set := &profile.QuantileSet{
		Source: profile.MarkerExact,
		Basis:  len(q.values),
		Seen:   q.seen,
	}
	if q.sampled {
		set.Source = profile.MarkerEstimated
	}

	var err error
	if set.P5, err = q.Quantile(5); err != nil {
		return nil, err
	}
	if set.Q1, err = q.Quantile(25); err != nil {
		return nil, err
	}
	if set.Median, err = q.Quantile(50); err != nil {
		return nil, err
	}
	if set.Q3, err = q.Quantile(75); err != nil {
		return nil, err
	}
	if set.P95, err = q.Quantile(95); err != nil {
		return nil, err
	}
	set.IQR = set.Q3 - set.Q1
	return set, nil
}

// sortPairs sorts values ascending, carrying the index slice along
func sortPairs(values []float64, indices []int64) {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	sortedVals := make([]float64, len(values))
	sortedIdx := make([]int64, len(indices))
	for i, o := range order {
		sortedVals[i] = values[o]
		sortedIdx[i] = indices[o]
	}
	copy(values, sortedVals)
	copy(indices, sortedIdx)
}
