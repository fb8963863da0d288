package profile

// SamplingMethod defines how rows are reduced before accumulation
type SamplingMethod string

const (
	SamplingNone       SamplingMethod = "none"
	SamplingSystematic SamplingMethod = "systematic"
	SamplingRandom     SamplingMethod = "random"
	SamplingStratified SamplingMethod = "stratified"
)

// SamplingPlan is chosen once per run and applied to the single row stream
// every accumulator consumes. All summaries of one run therefore agree on n;
// re-sampling per dimension would be a correctness bug, not an optimization.
type SamplingPlan struct {
	Method     SamplingMethod `json:"method"`
	SourceRows int64          `json:"source_rows"` // rows in the underlying dataset
	TargetSize int64          `json:"target_size"` // rows the plan lets through
	Rate       float64        `json:"rate"`        // TargetSize / SourceRows
	Stride     int64          `json:"stride"`      // every Nth row for systematic plans
}

// Exact reports whether the plan passes the full stream through
func (p SamplingPlan) Exact() bool {
	return p.Method == SamplingNone
}

// Marker returns the provenance label downstream summaries should carry
func (p SamplingPlan) Marker() Marker {
	if p.Exact() {
		return MarkerExact
	}
	return MarkerEstimated
}

// Admit reports whether row index i (zero-based, in source order) is part of
// the sampled sequence. Systematic plans preserve row order by construction,
// which keeps date-ordered analyses meaningful.
func (p SamplingPlan) Admit(i int64) bool {
	switch p.Method {
	case SamplingNone:
		return true
	case SamplingSystematic:
		if p.Stride <= 1 {
			return true
		}
		return i%p.Stride == 0
	default:
		return true
	}
}
