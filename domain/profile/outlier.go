package profile

import (
	"csvprof/domain/core"
)

// OutlierMethod identifies one of the three independent detection rules
type OutlierMethod string

const (
	MethodIQR    OutlierMethod = "iqr"
	MethodZScore OutlierMethod = "zscore"
	MethodMAD    OutlierMethod = "mad" // modified z-score
)

// MethodResult holds one detection rule's verdict for a column.
// Skipped is set when the rule's preconditions do not hold (zero or
// undefined spread), which is distinct from flagging nothing.
type MethodResult struct {
	Method     OutlierMethod `json:"method"`
	Count      int64         `json:"count"`
	Skipped    bool          `json:"skipped,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty"`
}

// IQRFences holds the fence values used by the IQR rule
type IQRFences struct {
	Lower        float64 `json:"lower"`         // Q1 - 1.5*IQR
	Upper        float64 `json:"upper"`         // Q3 + 1.5*IQR
	ExtremeLower float64 `json:"extreme_lower"` // Q1 - 3.0*IQR
	ExtremeUpper float64 `json:"extreme_upper"` // Q3 + 3.0*IQR
}

// OutlierReport aggregates all three rules for one numeric column.
// The three methods are independent; a value may be flagged by any subset
// of them and UnionCount de-duplicates by row index.
type OutlierReport struct {
	ColumnKey core.ColumnKey `json:"column_key"`

	IQR          MethodResult `json:"iqr"`
	Fences       IQRFences    `json:"fences"`
	ExtremeCount int64        `json:"extreme_count"` // subset outside the 3.0 fences
	ZScore       MethodResult `json:"zscore"`
	MAD          MethodResult `json:"mad"`

	UnionCount int64 `json:"union_count"`

	// Offending row indices, capped for large data; Truncated marks the cap.
	RowIndices []int64 `json:"row_indices,omitempty"`
	Truncated  bool    `json:"truncated,omitempty"`

	// Basis records whether fences were derived from exact or sampled quantiles
	Basis Marker `json:"basis"`
}
