package profile

import (
	"csvprof/domain/core"
)

// ColumnType defines the structural type assigned to a column during classification
type ColumnType string

const (
	TypeInteger     ColumnType = "integer"
	TypeFloat       ColumnType = "float"
	TypeCategorical ColumnType = "categorical"
	TypeDate        ColumnType = "date"
	TypeBoolean     ColumnType = "boolean"
	TypeIdentifier  ColumnType = "identifier"
	TypeText        ColumnType = "text"
)

// IsNumeric returns true for types that feed the numeric accumulators
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Marker labels how a reported value was obtained, so degraded or estimated
// results are never presented with the same confidence as exact ones.
type Marker string

const (
	MarkerExact            Marker = "exact"
	MarkerEstimated        Marker = "estimated_via_sampling"
	MarkerInsufficientData Marker = "insufficient_data"
	MarkerNotImplemented   Marker = "not_yet_implemented"
)

// Stat is a single derived statistic with its provenance marker.
// Value is meaningless unless Marker is exact or estimated.
type Stat struct {
	Value  float64 `json:"value"`
	Marker Marker  `json:"marker"`
}

// ExactStat creates a statistic computed from the full data
func ExactStat(v float64) Stat {
	return Stat{Value: v, Marker: MarkerExact}
}

// EstimatedStat creates a statistic computed from a sample
func EstimatedStat(v float64) Stat {
	return Stat{Value: v, Marker: MarkerEstimated}
}

// UndefinedStat creates a statistic that could not be computed
func UndefinedStat() Stat {
	return Stat{Marker: MarkerInsufficientData}
}

// Defined returns true when the value carries meaning
func (s Stat) Defined() bool {
	return s.Marker == MarkerExact || s.Marker == MarkerEstimated
}

// Row is a typed row produced by a row-source collaborator.
// Values map column name to a typed value; nil means missing.
type Row map[string]interface{}

// Column describes one dataset column after classification.
// Created once per run and immutable afterward.
type Column struct {
	Key          core.ColumnKey `json:"key"`
	Name         string         `json:"name"`
	Type         ColumnType     `json:"type"`
	SemanticHint string         `json:"semantic_hint,omitempty"`
	Confidence   float64        `json:"confidence"` // 0-1 type-detection confidence
}

// NewColumn creates a classified column
func NewColumn(name string, colType ColumnType, confidence float64) Column {
	return Column{
		Key:        core.ColumnKey(name),
		Name:       name,
		Type:       colType,
		Confidence: confidence,
	}
}
