package profile

import (
	"time"
)

// ColumnSummary holds everything accumulated for one column.
// It is mutated incrementally while rows stream in and sealed by the engine
// once the stream (or its sample) is exhausted; derived fields such as
// percentiles and entropy are only valid after finalization.
type ColumnSummary struct {
	Column       Column `json:"column"`
	Count        int64  `json:"count"`         // non-missing values consumed
	MissingCount int64  `json:"missing_count"` // nulls and unparseable values
	UniqueCount  int64  `json:"unique_count"`

	// Exactly one type-specific payload is set, matching Column.Type
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
	Date        *DateSummary        `json:"date,omitempty"`
	Boolean     *BooleanSummary     `json:"boolean,omitempty"`
	Text        *TextSummary        `json:"text,omitempty"`
}

// MissingRate returns the fraction of consumed cells that were missing
func (s *ColumnSummary) MissingRate() float64 {
	total := s.Count + s.MissingCount
	if total == 0 {
		return 0
	}
	return float64(s.MissingCount) / float64(total)
}

// NumericSummary carries the raw power sums and the statistics derived from
// them. Mean through kurtosis are pure functions of the five running scalars,
// which is what makes the moment pass single-sweep and O(1) in memory.
type NumericSummary struct {
	Count   int64   `json:"count"`
	Sum     float64 `json:"sum"`
	SumSq   float64 `json:"sum_sq"`
	SumCube float64 `json:"sum_cube"`
	SumQuad float64 `json:"sum_quad"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`

	Mean     Stat `json:"mean"`
	Variance Stat `json:"variance"` // population variance, clamped >= 0
	StdDev   Stat `json:"std_dev"`
	Skewness Stat `json:"skewness"`
	Kurtosis Stat `json:"kurtosis"` // excess convention: normal -> 0

	ZeroCount     int64 `json:"zero_count"`
	NegativeCount int64 `json:"negative_count"`

	Quantiles *QuantileSet `json:"quantiles,omitempty"`
}

// QuantileSet holds the percentile estimates for a numeric column.
// Source records whether they came from an exact sorted buffer or a
// bounded reservoir sample.
type QuantileSet struct {
	P5     float64 `json:"p5"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	P95    float64 `json:"p95"`
	IQR    float64 `json:"iqr"`
	Source Marker  `json:"source"` // exact or estimated_via_sampling
	Basis  int     `json:"basis"`  // number of retained values answering queries
	Seen   int64   `json:"seen"`   // total values the estimator observed
}

// ValueCount represents a category value and its frequency
type ValueCount struct {
	Value string  `json:"value"`
	Count int64   `json:"count"`
	Ratio float64 `json:"ratio"`
}

// BalanceLabel classifies how evenly a categorical column is distributed
type BalanceLabel string

const (
	BalanceHigh     BalanceLabel = "highly_balanced"
	BalanceModerate BalanceLabel = "moderately_balanced"
	BalanceLow      BalanceLabel = "unbalanced"
)

// CategoricalSummary carries the frequency analysis of a categorical column
type CategoricalSummary struct {
	TopValues         []ValueCount `json:"top_values"`
	Mode              *ValueCount  `json:"mode,omitempty"`
	SecondMode        *ValueCount  `json:"second_mode,omitempty"`
	EntropyBits       Stat         `json:"entropy_bits"` // Shannon entropy, log2
	NormalizedEntropy Stat         `json:"normalized_entropy"`
	Gini              Stat         `json:"gini"` // 1 - sum(p^2)
	Balance           BalanceLabel `json:"balance,omitempty"`
	RareCategories    int          `json:"rare_categories"` // categories below 1% of rows

	// ReclassifyHint is set when unique/total exceeds the high-cardinality
	// guard: the column likely holds identifiers or free text, and the
	// frequency table was capped rather than grown without bound.
	ReclassifyHint ColumnType `json:"reclassify_hint,omitempty"`
}

// DateSummary carries the temporal range of a date column
type DateSummary struct {
	Min      time.Time `json:"min"`
	Max      time.Time `json:"max"`
	SpanDays float64   `json:"span_days"`
}

// BooleanSummary carries the value split of a boolean column
type BooleanSummary struct {
	TrueCount  int64   `json:"true_count"`
	FalseCount int64   `json:"false_count"`
	TrueRatio  float64 `json:"true_ratio"`
}

// TextSummary carries length and shape statistics for free-text columns
type TextSummary struct {
	AvgLength       float64 `json:"avg_length"`
	MinLength       int     `json:"min_length"`
	MaxLength       int     `json:"max_length"`
	HasNumbers      bool    `json:"has_numbers"`
	HasSpecialChars bool    `json:"has_special_chars"`
}
