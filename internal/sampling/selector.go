package sampling

import (
	"csvprof/domain/profile"
)

// Depth is the requested analysis depth; it scales how many rows a sampled
// run is allowed to consume.
type Depth string

const (
	DepthFast     Depth = "fast"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// midTierStride is the systematic stride applied between the two row-count
// thresholds: one row in ten, keeping the sample proportional until the
// absolute cap takes over.
const midTierStride = 10

// Selector chooses the sampling plan for a run from the source's row count
// and the requested depth. The choice happens exactly once per run; every
// accumulator then consumes the identical sampled sequence, so all report
// sections agree on n.
type Selector struct {
	lowThreshold  int64
	highThreshold int64
	maxSample     int64
}

// NewSelector creates a selector with the configured row-count tiers
func NewSelector(lowThreshold, highThreshold, maxSample int64) *Selector {
	return &Selector{
		lowThreshold:  lowThreshold,
		highThreshold: highThreshold,
		maxSample:     maxSample,
	}
}

// Plan decides the sampling method:
//
//	rows <= low            exact, full stream
//	low < rows <= high     systematic, fixed one-in-ten stride
//	rows > high            systematic, stride grown to hold the sample
//	                       under the absolute cap regardless of dataset size
//
// Systematic strides preserve row order, which date-ordered analyses
// depend on. A source that cannot report its row count (-1) is streamed
// exactly; bounded memory then rests on the reservoir estimators alone.
func (s *Selector) Plan(rowCount int64, depth Depth) profile.SamplingPlan {
	if rowCount < 0 {
		return exactPlan(rowCount)
	}

	ceiling := s.maxSample
	switch depth {
	case DepthFast:
		ceiling = s.maxSample / 2
	case DepthDeep:
		ceiling = s.maxSample * 2
	}
	if ceiling < 1 {
		ceiling = 1
	}

	if rowCount <= s.lowThreshold {
		return exactPlan(rowCount)
	}

	stride := int64(midTierStride)
	if rowCount > s.highThreshold {
		stride = ceilDiv(rowCount, ceiling)
		if stride < midTierStride {
			stride = midTierStride
		}
	}

	target := ceilDiv(rowCount, stride)
	if target > ceiling {
		stride = ceilDiv(rowCount, ceiling)
		target = ceilDiv(rowCount, stride)
	}

	return profile.SamplingPlan{
		Method:     profile.SamplingSystematic,
		SourceRows: rowCount,
		TargetSize: target,
		Rate:       float64(target) / float64(rowCount),
		Stride:     stride,
	}
}

func exactPlan(rowCount int64) profile.SamplingPlan {
	rate := 1.0
	if rowCount < 0 {
		rate = 0 // unknown size, reported as-is
	}
	return profile.SamplingPlan{
		Method:     profile.SamplingNone,
		SourceRows: rowCount,
		TargetSize: rowCount,
		Rate:       rate,
		Stride:     1,
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
