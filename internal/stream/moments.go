package stream

import (
	"math"

	"csvprof/domain/profile"
)

// MomentAccumulator computes count, mean, variance, skewness, kurtosis, min
// and max for one numeric column in a single forward pass. Only the running
// power sums are kept, so each update is O(1) time and the whole accumulator
// is O(1) memory regardless of row count.
type MomentAccumulator struct {
	count   int64
	sum     float64
	sumSq   float64
	sumCube float64
	sumQuad float64
	min     float64
	max     float64

	zeroCount     int64
	negativeCount int64
	missing       int64
}

// NewMomentAccumulator creates an empty accumulator
func NewMomentAccumulator() *MomentAccumulator {
	return &MomentAccumulator{
		min: math.Inf(1),
		max: math.Inf(-1),
	}
}

// Add consumes one numeric value. NaN and infinities are rejected as
// missing; Add never fails.
func (m *MomentAccumulator) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		m.missing++
		return
	}

	m.count++
	m.sum += v
	sq := v * v
	m.sumSq += sq
	m.sumCube += sq * v
	m.sumQuad += sq * sq

	if v < m.min {
		m.min = v
	}
	if v > m.max {
		m.max = v
	}
	if v == 0 {
		m.zeroCount++
	}
	if v < 0 {
		m.negativeCount++
	}
}

// AddMissing records a null or unparseable value
func (m *MomentAccumulator) AddMissing() {
	m.missing++
}

// Count returns the number of accepted values
func (m *MomentAccumulator) Count() int64 { return m.count }

// Missing returns the number of rejected values
func (m *MomentAccumulator) Missing() int64 { return m.missing }

// Min returns the exact minimum; only meaningful when Count() > 0
func (m *MomentAccumulator) Min() float64 { return m.min }

// Max returns the exact maximum; only meaningful when Count() > 0
func (m *MomentAccumulator) Max() float64 { return m.max }

// Finalize derives the distribution statistics from the power sums.
// Statistics whose preconditions do not hold come back with the
// insufficient-data marker instead of a silent zero or NaN; Finalize
// itself never fails.
func (m *MomentAccumulator) Finalize(marker profile.Marker) *profile.NumericSummary {
	s := &profile.NumericSummary{
		Count:         m.count,
		Sum:           m.sum,
		SumCube:       m.sumCube,
		SumQuad:       m.sumQuad,
		SumSq:         m.sumSq,
		ZeroCount:     m.zeroCount,
		NegativeCount: m.negativeCount,
		Mean:          profile.UndefinedStat(),
		Variance:      profile.UndefinedStat(),
		StdDev:        profile.UndefinedStat(),
		Skewness:      profile.UndefinedStat(),
		Kurtosis:      profile.UndefinedStat(),
	}

	if m.count == 0 {
		return s
	}

	s.Min = m.min
	s.Max = m.max

	n := float64(m.count)
	mean := m.sum / n
	s.Mean = profile.Stat{Value: mean, Marker: marker}

	if m.count < 2 {
		return s
	}

	// Population variance; floating point residue can push the difference
	// slightly negative for near-constant data, so clamp at zero.
	variance := m.sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	s.Variance = profile.Stat{Value: variance, Marker: marker}
	stdDev := math.Sqrt(variance)
	s.StdDev = profile.Stat{Value: stdDev, Marker: marker}

	if variance == 0 {
		// Constant column: skewness and kurtosis have no meaning
		return s
	}

	// Third and fourth central moments from the raw power sums
	m3 := m.sumCube/n - 3*mean*m.sumSq/n + 2*mean*mean*mean
	m4 := m.sumQuad/n - 4*mean*m.sumCube/n + 6*mean*mean*m.sumSq/n - 3*mean*mean*mean*mean

	if m.count >= 3 {
		s.Skewness = profile.Stat{Value: m3 / math.Pow(stdDev, 3), Marker: marker}
	}
	if m.count >= 4 {
		// Excess convention: normal distribution scores 0
		s.Kurtosis = profile.Stat{Value: m4/(variance*variance) - 3, Marker: marker}
	}

	return s
}
