package classify

import (
	"strconv"
	"strings"
	"time"

	"csvprof/domain/profile"
)

// Classifier assigns a structural type to each column from a bounded prefix
// sample of rows. It is a pure function of the sample: rules and thresholds
// are data, evaluated in a fixed priority order, so classification is
// reproducible and each rule is testable on its own.
type Classifier struct {
	threshold           float64 // minimum match rate for a rule to win
	categoricalMaxRatio float64 // unique/total ceiling for the categorical rule
	rules               []Rule
}

// Rule is one predicate in the ordered rule list. Match returns the fraction
// of non-missing sampled values satisfying the rule's type.
type Rule struct {
	Type  profile.ColumnType
	Match func(sample *ColumnSample) float64
}

// ColumnSample is the per-column view of the prefix sample
type ColumnSample struct {
	Name    string
	Values  []interface{} // non-missing values only
	Missing int
}

// UniqueRatio returns distinct/total over the sampled values
func (s *ColumnSample) UniqueRatio() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(s.Values))
	for _, v := range s.Values {
		seen[valueKey(v)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(s.Values))
}

// NewClassifier creates a classifier with the given thresholds.
// Rule order is load-bearing: the identifier test runs before the
// categorical test so a 100%-unique short-string column is never
// misread as categorical on cardinality alone.
func NewClassifier(threshold, categoricalMaxRatio float64) *Classifier {
	c := &Classifier{
		threshold:           threshold,
		categoricalMaxRatio: categoricalMaxRatio,
	}
	c.rules = []Rule{
		{Type: profile.TypeIdentifier, Match: c.matchIdentifier},
		{Type: profile.TypeBoolean, Match: matchRate(isBooleanValue)},
		{Type: profile.TypeInteger, Match: matchRate(isIntegerValue)},
		{Type: profile.TypeFloat, Match: matchRate(isFloatValue)},
		{Type: profile.TypeDate, Match: matchRate(isDateValue)},
		{Type: profile.TypeCategorical, Match: c.matchCategorical},
	}
	return c
}

// Classify assigns a type to every header from the sampled rows.
// Columns that match no rule at the threshold fall back to text with
// reduced confidence.
func (c *Classifier) Classify(headers []string, sample []profile.Row) []profile.Column {
	columns := make([]profile.Column, 0, len(headers))
	for _, name := range headers {
		cs := collectColumn(name, sample)
		col := c.classifyColumn(cs)
		col.SemanticHint = semanticHint(name, col.Type)
		columns = append(columns, col)
	}
	return columns
}

func (c *Classifier) classifyColumn(cs *ColumnSample) profile.Column {
	if len(cs.Values) == 0 {
		// All-missing column: nothing to test against, lowest confidence
		return profile.NewColumn(cs.Name, profile.TypeText, 0)
	}

	for _, rule := range c.rules {
		rate := rule.Match(cs)
		if rate >= c.threshold {
			return profile.NewColumn(cs.Name, rule.Type, rate)
		}
	}

	// Fallback: text, confidence reflects that no rule reached the threshold
	return profile.NewColumn(cs.Name, profile.TypeText, c.threshold/2)
}

// matchIdentifier recognizes key-like columns: every sampled value distinct
// and shaped like a short token rather than free text.
func (c *Classifier) matchIdentifier(cs *ColumnSample) float64 {
	if len(cs.Values) < 2 {
		return 0
	}
	if cs.UniqueRatio() < 1.0 {
		return 0
	}
	tokens := 0
	for _, v := range cs.Values {
		if isIdentifierToken(v) {
			tokens++
		}
	}
	return float64(tokens) / float64(len(cs.Values))
}

// matchCategorical accepts string-valued columns whose cardinality stays
// well below the row count.
func (c *Classifier) matchCategorical(cs *ColumnSample) float64 {
	if cs.UniqueRatio() > c.categoricalMaxRatio {
		return 0
	}
	strs := 0
	for _, v := range cs.Values {
		if _, ok := v.(string); ok {
			strs++
		}
	}
	return float64(strs) / float64(len(cs.Values))
}

// matchRate lifts a per-value predicate into a sample match rate
func matchRate(pred func(interface{}) bool) func(*ColumnSample) float64 {
	return func(cs *ColumnSample) float64 {
		matched := 0
		for _, v := range cs.Values {
			if pred(v) {
				matched++
			}
		}
		return float64(matched) / float64(len(cs.Values))
	}
}

func collectColumn(name string, sample []profile.Row) *ColumnSample {
	cs := &ColumnSample{Name: name}
	for _, row := range sample {
		v, ok := row[name]
		if !ok || v == nil {
			cs.Missing++
			continue
		}
		cs.Values = append(cs.Values, v)
	}
	return cs
}

// Per-value predicates

func isBooleanValue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "false", "t", "f", "yes", "no", "y", "n", "0", "1":
			return true
		}
	}
	return false
}

func isIntegerValue(v interface{}) bool {
	switch t := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return t == float64(int64(t))
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return err == nil
	}
	return false
}

func isFloatValue(v interface{}) bool {
	switch t := v.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-Jan-2006",
}

func isDateValue(v interface{}) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
	}
	return false
}

// isIdentifierToken accepts short alphanumeric tokens (ids, codes, uuids)
func isIdentifierToken(v interface{}) bool {
	switch t := v.(type) {
	case int, int32, int64:
		return true
	case string:
		s := strings.TrimSpace(t)
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
	return false
}

// valueKey normalizes a value for distinct counting
func valueKey(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
