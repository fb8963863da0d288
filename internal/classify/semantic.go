package classify

import (
	"strings"

	"csvprof/domain/profile"
)

// semanticHints maps column-name fragments to best-effort semantic labels.
// Purely advisory: reports surface the hint, nothing downstream branches on it.
var semanticHints = []struct {
	fragment string
	hint     string
	types    []profile.ColumnType
}{
	{"age", "age", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"price", "currency", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"amount", "currency", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"cost", "currency", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"salary", "currency", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"revenue", "currency", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"percent", "rate", []profile.ColumnType{profile.TypeInteger, profile.TypeFloat}},
	{"ratio", "rate", []profile.ColumnType{profile.TypeFloat}},
	{"rate", "rate", []profile.ColumnType{profile.TypeFloat}},
	{"email", "email", []profile.ColumnType{profile.TypeText, profile.TypeIdentifier}},
	{"phone", "phone", []profile.ColumnType{profile.TypeText, profile.TypeIdentifier}},
	{"year", "year", []profile.ColumnType{profile.TypeInteger}},
	{"country", "geography", []profile.ColumnType{profile.TypeCategorical, profile.TypeText}},
	{"city", "geography", []profile.ColumnType{profile.TypeCategorical, profile.TypeText}},
	{"zip", "postal_code", []profile.ColumnType{profile.TypeIdentifier, profile.TypeCategorical}},
}

// semanticHint returns the first name-fragment hint compatible with the
// detected structural type, or empty when nothing applies.
func semanticHint(name string, colType profile.ColumnType) string {
	lower := strings.ToLower(name)
	for _, h := range semanticHints {
		if !strings.Contains(lower, h.fragment) {
			continue
		}
		for _, t := range h.types {
			if t == colType {
				return h.hint
			}
		}
	}
	return ""
}
