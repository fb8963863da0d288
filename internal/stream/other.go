package stream

import (
	"strings"
	"time"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

// DateAccumulator tracks the temporal range of a date column
type DateAccumulator struct {
	min     time.Time
	max     time.Time
	count   int64
	missing int64
}

// NewDateAccumulator creates an empty date accumulator
func NewDateAccumulator() *DateAccumulator {
	return &DateAccumulator{}
}

// Add consumes one timestamp
func (d *DateAccumulator) Add(t time.Time) {
	if d.count == 0 || t.Before(d.min) {
		d.min = t
	}
	if d.count == 0 || t.After(d.max) {
		d.max = t
	}
	d.count++
}

// AddMissing records a null or unparseable date
func (d *DateAccumulator) AddMissing() { d.missing++ }

// Count returns the number of accepted values
func (d *DateAccumulator) Count() int64 { return d.count }

// Missing returns the number of rejected values
func (d *DateAccumulator) Missing() int64 { return d.missing }

// Finalize produces the date summary
func (d *DateAccumulator) Finalize() (*profile.DateSummary, error) {
	if d.count == 0 {
		return nil, core.ErrInsufficientData
	}
	return &profile.DateSummary{
		Min:      d.min,
		Max:      d.max,
		SpanDays: d.max.Sub(d.min).Hours() / 24,
	}, nil
}

// BooleanAccumulator tracks the value split of a boolean column
type BooleanAccumulator struct {
	trueCount  int64
	falseCount int64
	missing    int64
}

// NewBooleanAccumulator creates an empty boolean accumulator
func NewBooleanAccumulator() *BooleanAccumulator {
	return &BooleanAccumulator{}
}

// Add consumes one boolean
func (b *BooleanAccumulator) Add(v bool) {
	if v {
		b.trueCount++
	} else {
		b.falseCount++
	}
}

// AddMissing records a null or unparseable value
func (b *BooleanAccumulator) AddMissing() { b.missing++ }

// Count returns the number of accepted values
func (b *BooleanAccumulator) Count() int64 { return b.trueCount + b.falseCount }

// Missing returns the number of rejected values
func (b *BooleanAccumulator) Missing() int64 { return b.missing }

// Finalize produces the boolean summary
func (b *BooleanAccumulator) Finalize() (*profile.BooleanSummary, error) {
	total := b.trueCount + b.falseCount
	if total == 0 {
		return nil, core.ErrInsufficientData
	}
	return &profile.BooleanSummary{
		TrueCount:  b.trueCount,
		FalseCount: b.falseCount,
		TrueRatio:  float64(b.trueCount) / float64(total),
	}, nil
}

// TextAccumulator tracks length and shape statistics of free-text columns
type TextAccumulator struct {
	count      int64
	missing    int64
	totalLen   int64
	minLen     int
	maxLen     int
	hasNumbers bool
	hasSpecial bool
}

// NewTextAccumulator creates an empty text accumulator
func NewTextAccumulator() *TextAccumulator {
	return &TextAccumulator{}
}

// Add consumes one text value
func (t *TextAccumulator) Add(s string) {
	length := len(s)
	if t.count == 0 || length < t.minLen {
		t.minLen = length
	}
	if length > t.maxLen {
		t.maxLen = length
	}
	t.totalLen += int64(length)
	t.count++

	if !t.hasNumbers && strings.ContainsAny(s, "0123456789") {
		t.hasNumbers = true
	}
	if !t.hasSpecial && strings.ContainsAny(s, "!@#$%^&*()_+-=[]{}|;:,.<>?") {
		t.hasSpecial = true
	}
}

// AddMissing records a null value
func (t *TextAccumulator) AddMissing() { t.missing++ }

// Count returns the number of accepted values
func (t *TextAccumulator) Count() int64 { return t.count }

// Missing returns the number of rejected values
func (t *TextAccumulator) Missing() int64 { return t.missing }

// Finalize produces the text summary
func (t *TextAccumulator) Finalize() (*profile.TextSummary, error) {
	if t.count == 0 {
		return nil, core.ErrInsufficientData
	}
	return &profile.TextSummary{
		AvgLength:       float64(t.totalLen) / float64(t.count),
		MinLength:       t.minLen,
		MaxLength:       t.maxLen,
		HasNumbers:      t.hasNumbers,
		HasSpecialChars: t.hasSpecial,
	}, nil
}
