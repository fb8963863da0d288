package stream

import (
	"math"
	"math/rand"
	"testing"

	"csvprof/domain/profile"
)

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMomentsKnownDistribution(t *testing.T) {
	m := NewMomentAccumulator()
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		m.Add(v)
	}

	s := m.Finalize(profile.MarkerExact)

	if s.Count != 8 {
		t.Fatalf("count = %d, want 8", s.Count)
	}
	if !closeTo(s.Mean.Value, 5.0, 1e-9) {
		t.Errorf("mean = %v, want 5", s.Mean.Value)
	}
	if !closeTo(s.Variance.Value, 4.0, 1e-9) {
		t.Errorf("variance = %v, want 4", s.Variance.Value)
	}
	if !closeTo(s.StdDev.Value, 2.0, 1e-9) {
		t.Errorf("stddev = %v, want 2", s.StdDev.Value)
	}
	if !closeTo(s.Skewness.Value, 0.65625, 1e-9) {
		t.Errorf("skewness = %v, want 0.65625", s.Skewness.Value)
	}
	if !closeTo(s.Kurtosis.Value, -0.21875, 1e-9) {
		t.Errorf("kurtosis = %v, want -0.21875", s.Kurtosis.Value)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Errorf("min/max = %v/%v, want 2/9", s.Min, s.Max)
	}
}

func TestMomentsVarianceNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		m := NewMomentAccumulator()
		// near-constant values at a large offset stress the power-sum
		// cancellation that can push raw variance below zero
		base := 1e8 + rng.Float64()
		for i := 0; i < 1000; i++ {
			m.Add(base + rng.Float64()*1e-6)
		}
		s := m.Finalize(profile.MarkerExact)
		if s.Variance.Value < 0 {
			t.Fatalf("trial %d: variance = %v, want >= 0", trial, s.Variance.Value)
		}
	}
}

func TestMomentsInsufficientDataMarkers(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		check  func(t *testing.T, s *profile.NumericSummary)
	}{
		{"empty", nil, func(t *testing.T, s *profile.NumericSummary) {
			if s.Mean.Marker != profile.MarkerInsufficientData {
				t.Errorf("mean marker = %s, want insufficient", s.Mean.Marker)
			}
		}},
		{"single value", []float64{7}, func(t *testing.T, s *profile.NumericSummary) {
			if s.Mean.Marker != profile.MarkerExact {
				t.Errorf("mean marker = %s, want exact", s.Mean.Marker)
			}
			if s.Variance.Marker != profile.MarkerInsufficientData {
				t.Errorf("variance marker = %s, want insufficient", s.Variance.Marker)
			}
		}},
		{"two values", []float64{1, 3}, func(t *testing.T, s *profile.NumericSummary) {
			if s.Variance.Marker != profile.MarkerExact {
				t.Errorf("variance marker = %s, want exact", s.Variance.Marker)
			}
			if s.Skewness.Marker != profile.MarkerInsufficientData {
				t.Errorf("skewness marker = %s, want insufficient", s.Skewness.Marker)
			}
		}},
		{"constant column", []float64{5, 5, 5, 5, 5}, func(t *testing.T, s *profile.NumericSummary) {
			if s.Variance.Value != 0 {
				t.Errorf("variance = %v, want 0", s.Variance.Value)
			}
			if s.Skewness.Marker != profile.MarkerInsufficientData {
				t.Errorf("skewness marker = %s, want insufficient for zero variance", s.Skewness.Marker)
			}
			if s.Kurtosis.Marker != profile.MarkerInsufficientData {
				t.Errorf("kurtosis marker = %s, want insufficient for zero variance", s.Kurtosis.Marker)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMomentAccumulator()
			for _, v := range tc.values {
				m.Add(v)
			}
			tc.check(t, m.Finalize(profile.MarkerExact))
		})
	}
}

func TestMomentsRejectsNonFinite(t *testing.T) {
	m := NewMomentAccumulator()
	m.Add(1)
	m.Add(math.NaN())
	m.Add(math.Inf(1))
	m.Add(math.Inf(-1))
	m.Add(2)

	if m.Count() != 2 {
		t.Errorf("count = %d, want 2", m.Count())
	}
	if m.Missing() != 3 {
		t.Errorf("missing = %d, want 3", m.Missing())
	}
}

func TestMomentsZeroAndNegativeCounts(t *testing.T) {
	m := NewMomentAccumulator()
	for _, v := range []float64{-2, -1, 0, 0, 1, 2} {
		m.Add(v)
	}
	s := m.Finalize(profile.MarkerExact)
	if s.ZeroCount != 2 {
		t.Errorf("zero count = %d, want 2", s.ZeroCount)
	}
	if s.NegativeCount != 2 {
		t.Errorf("negative count = %d, want 2", s.NegativeCount)
	}
}
