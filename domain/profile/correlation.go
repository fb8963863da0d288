package profile

import (
	"csvprof/domain/core"
)

// CorrelationPair is one unordered pair of numeric columns with its
// pairwise-complete Pearson coefficient. ColumnA is always the
// lexically smaller name so pair(A,B) == pair(B,A).
type CorrelationPair struct {
	ColumnA core.ColumnKey `json:"column_a"`
	ColumnB core.ColumnKey `json:"column_b"`

	R           float64 `json:"r"`           // in [-1, 1] when computable
	SampleSize  int     `json:"sample_size"` // rows where both values were present
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"` // p < 0.05

	// Computable is false when either column was constant over the shared
	// rows or the shared sample was too small; R and PValue then carry no
	// meaning and Reason says why.
	Computable bool   `json:"computable"`
	Reason     string `json:"reason,omitempty"`
}

// NewCorrelationPair orders the two keys lexically before constructing the pair
func NewCorrelationPair(a, b core.ColumnKey) CorrelationPair {
	if b.String() < a.String() {
		a, b = b, a
	}
	return CorrelationPair{ColumnA: a, ColumnB: b}
}

// Key returns the canonical identity of the unordered pair
func (p CorrelationPair) Key() string {
	return p.ColumnA.String() + "\x1f" + p.ColumnB.String()
}
