package profile

import (
	"time"

	"csvprof/domain/core"
)

// DatasetInfo summarizes the dataset a report was computed over
type DatasetInfo struct {
	Source      string                  `json:"source"` // file path or logical name
	RowCount    int64                   `json:"row_count"`
	ColumnCount int                     `json:"column_count"`
	ByteSize    int64                   `json:"byte_size,omitempty"`
	MissingRate float64                 `json:"missing_rate"`
	Fingerprint core.DatasetFingerprint `json:"fingerprint"`
}

// Report is the complete multi-section output of one profiling run
type Report struct {
	ID        core.ReportID  `json:"id"`
	RunID     core.RunID     `json:"run_id"`
	CreatedAt core.Timestamp `json:"created_at"`
	Duration  time.Duration  `json:"duration_ns"`

	Dataset  DatasetInfo  `json:"dataset"`
	Sampling SamplingPlan `json:"sampling"`

	Columns      []ColumnSummary   `json:"columns"`
	Outliers     []OutlierReport   `json:"outliers"`
	Correlations []CorrelationPair `json:"correlations"`     // full upper triangle
	TopPairs     []CorrelationPair `json:"top_correlations"` // ranked by |r|

	Quality QualityReport `json:"quality"`
}

// NewReport creates a report shell for a run
func NewReport(runID core.RunID) *Report {
	return &Report{
		ID:        core.ReportID(core.NewID()),
		RunID:     runID,
		CreatedAt: core.Now(),
	}
}

// ColumnSummaryFor returns the summary for a column key, if present
func (r *Report) ColumnSummaryFor(key core.ColumnKey) (*ColumnSummary, bool) {
	for i := range r.Columns {
		if r.Columns[i].Column.Key == key {
			return &r.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the classified numeric columns of the report
func (r *Report) NumericColumns() []Column {
	var cols []Column
	for _, cs := range r.Columns {
		if cs.Column.Type.IsNumeric() {
			cols = append(cols, cs.Column)
		}
	}
	return cols
}
