package stream

import (
	"math"
	"sort"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

const topValueCount = 10

// CategoricalAnalyzer maintains a frequency table for one categorical
// column. The table is capped: once the observed cardinality ratio blows
// past the configured guard, new categories are folded into an overflow
// bucket and the column is flagged for reclassification instead of letting
// the map grow without bound.
type CategoricalAnalyzer struct {
	maxRatio float64
	maxKeys  int

	counts   map[string]int64
	firstIdx map[string]int64 // arrival order, for deterministic tie-breaks
	total    int64
	missing  int64
	overflow int64 // values dropped after the cap engaged
	capped   bool
}

// NewCategoricalAnalyzer creates an analyzer with the given high-cardinality
// guard ratio and an absolute key cap.
func NewCategoricalAnalyzer(maxRatio float64, maxKeys int) *CategoricalAnalyzer {
	return &CategoricalAnalyzer{
		maxRatio: maxRatio,
		maxKeys:  maxKeys,
		counts:   make(map[string]int64),
		firstIdx: make(map[string]int64),
	}
}

// Add consumes one category value
func (c *CategoricalAnalyzer) Add(value string) {
	c.total++

	if _, seen := c.counts[value]; seen {
		c.counts[value]++
		return
	}

	if c.capped || len(c.counts) >= c.maxKeys {
		c.capped = true
		c.overflow++
		return
	}

	c.firstIdx[value] = c.total
	c.counts[value] = 1
}

// AddMissing records a null value
func (c *CategoricalAnalyzer) AddMissing() {
	c.missing++
}

// Count returns the number of accepted values
func (c *CategoricalAnalyzer) Count() int64 { return c.total }

// Missing returns the number of null values
func (c *CategoricalAnalyzer) Missing() int64 { return c.missing }

// UniqueCount returns the observed distinct categories
func (c *CategoricalAnalyzer) UniqueCount() int64 { return int64(len(c.counts)) }

// Finalize computes mode, entropy, Gini impurity and the balance label.
// Must only be called once the stream is exhausted; entropy over a partial
// table would not mean anything.
func (c *CategoricalAnalyzer) Finalize(marker profile.Marker) (*profile.CategoricalSummary, error) {
	if c.total == 0 {
		return nil, core.ErrInsufficientData
	}

	s := &profile.CategoricalSummary{
		EntropyBits:       profile.UndefinedStat(),
		NormalizedEntropy: profile.UndefinedStat(),
		Gini:              profile.UndefinedStat(),
	}

	ranked := c.rank()

	for i, vc := range ranked {
		if i >= topValueCount {
			break
		}
		s.TopValues = append(s.TopValues, vc)
	}
	if len(ranked) > 0 {
		s.Mode = &ranked[0]
	}
	if len(ranked) > 1 {
		s.SecondMode = &ranked[1]
	}

	// Shannon entropy in bits and Gini impurity over observed categories.
	// An empty or zero term contributes 0 by convention.
	entropy := 0.0
	sumSq := 0.0
	for _, count := range c.counts {
		p := float64(count) / float64(c.total)
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
		sumSq += p * p
	}
	s.EntropyBits = profile.Stat{Value: entropy, Marker: marker}
	s.Gini = profile.Stat{Value: 1 - sumSq, Marker: marker}

	// Balance from normalized entropy; a single-category column has no
	// spread to normalize against, so the label stays empty.
	k := len(c.counts)
	if k > 1 {
		norm := entropy / math.Log2(float64(k))
		s.NormalizedEntropy = profile.Stat{Value: norm, Marker: marker}
		s.Balance = balanceLabel(norm)
	}

	// Categories below 1% of rows
	for _, count := range c.counts {
		if float64(count)/float64(c.total) < 0.01 {
			s.RareCategories++
		}
	}

	if c.guardTripped() {
		s.ReclassifyHint = reclassifyTarget(c.counts)
	}

	return s, nil
}

// guardTripped reports whether the high-cardinality guard fired
func (c *CategoricalAnalyzer) guardTripped() bool {
	if c.capped {
		return true
	}
	if c.total == 0 {
		return false
	}
	return float64(len(c.counts))/float64(c.total) > c.maxRatio
}

// rank orders categories by count descending; ties go to the value
// encountered first, which keeps mode selection deterministic.
func (c *CategoricalAnalyzer) rank() []profile.ValueCount {
	ranked := make([]profile.ValueCount, 0, len(c.counts))
	for value, count := range c.counts {
		ranked = append(ranked, profile.ValueCount{
			Value: value,
			Count: count,
			Ratio: float64(count) / float64(c.total),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return c.firstIdx[ranked[i].Value] < c.firstIdx[ranked[j].Value]
	})
	return ranked
}

func balanceLabel(normalizedEntropy float64) profile.BalanceLabel {
	switch {
	case normalizedEntropy > 0.8:
		return profile.BalanceHigh
	case normalizedEntropy >= 0.5:
		return profile.BalanceModerate
	default:
		return profile.BalanceLow
	}
}

// reclassifyTarget guesses whether a high-cardinality column is key-like
// or free text from the shape of the values already seen.
func reclassifyTarget(counts map[string]int64) profile.ColumnType {
	tokens := 0
	checked := 0
	for value := range counts {
		if checked >= 100 {
			break
		}
		checked++
		if isShortToken(value) {
			tokens++
		}
	}
	if checked > 0 && float64(tokens)/float64(checked) >= 0.9 {
		return profile.TypeIdentifier
	}
	return profile.TypeText
}

func isShortToken(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
