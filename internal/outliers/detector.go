package outliers

import (
	"math"

	"github.com/montanaflynn/stats"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

const (
	iqrFenceK        = 1.5
	iqrExtremeFenceK = 3.0
	zScoreThreshold  = 3.0
	madScale         = 0.6745
	madThreshold     = 3.5
)

// Detector applies the three independent outlier rules to a numeric column.
// The rules never supersede one another: a value can be flagged by any
// subset of them, and the union figure de-duplicates by row identity.
type Detector struct {
	maxRows int // offending row indices retained per report
}

// NewDetector creates a detector that keeps at most maxRows offending
// row indices per column.
func NewDetector(maxRows int) *Detector {
	return &Detector{maxRows: maxRows}
}

// Detect scans the column's retained values. values and rowIndices are
// aligned; NaN entries are missing cells and never flagged. summary and
// quantiles come from the completed accumulators of the same run, so every
// rule judges the same sample.
func (d *Detector) Detect(key core.ColumnKey, values []float64, rowIndices []int64, summary *profile.NumericSummary, quantiles *profile.QuantileSet) (*profile.OutlierReport, error) {
	if summary == nil || quantiles == nil {
		return nil, core.ErrInsufficientData
	}
	if len(values) != len(rowIndices) {
		return nil, core.NewValidationError("row_indices", "length mismatch with values")
	}

	report := &profile.OutlierReport{
		ColumnKey: key,
		IQR:       profile.MethodResult{Method: profile.MethodIQR},
		ZScore:    profile.MethodResult{Method: profile.MethodZScore},
		MAD:       profile.MethodResult{Method: profile.MethodMAD},
		Basis:     quantiles.Source,
	}

	report.Fences = profile.IQRFences{
		Lower:        quantiles.Q1 - iqrFenceK*quantiles.IQR,
		Upper:        quantiles.Q3 + iqrFenceK*quantiles.IQR,
		ExtremeLower: quantiles.Q1 - iqrExtremeFenceK*quantiles.IQR,
		ExtremeUpper: quantiles.Q3 + iqrExtremeFenceK*quantiles.IQR,
	}

	// Z-score preconditions: spread must exist and be defined
	useZ := summary.StdDev.Defined() && summary.StdDev.Value > 0
	if !useZ {
		report.ZScore.Skipped = true
		report.ZScore.SkipReason = "standard deviation is zero or undefined"
	}

	// MAD preconditions: a positive median absolute deviation. Median and
	// MAD come from the retained values themselves, which is what makes
	// the rule robust to the outliers it hunts.
	median, mad, madErr := medianAndMAD(values)
	useMAD := madErr == nil && mad > 0
	if !useMAD {
		report.MAD.Skipped = true
		report.MAD.SkipReason = "median absolute deviation is zero or undefined"
	}

	mean := 0.0
	stdDev := 0.0
	if useZ {
		mean = summary.Mean.Value
		stdDev = summary.StdDev.Value
	}

	flagged := make(map[int64]struct{})
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		rowIdx := rowIndices[i]
		hit := false

		if v < report.Fences.Lower || v > report.Fences.Upper {
			report.IQR.Count++
			hit = true
			if v < report.Fences.ExtremeLower || v > report.Fences.ExtremeUpper {
				report.ExtremeCount++
			}
		}

		if useZ && math.Abs(v-mean)/stdDev > zScoreThreshold {
			report.ZScore.Count++
			hit = true
		}

		if useMAD && madScale*math.Abs(v-median)/mad > madThreshold {
			report.MAD.Count++
			hit = true
		}

		if hit {
			if _, seen := flagged[rowIdx]; !seen {
				flagged[rowIdx] = struct{}{}
				if len(report.RowIndices) < d.maxRows {
					report.RowIndices = append(report.RowIndices, rowIdx)
				} else {
					report.Truncated = true
				}
			}
		}
	}

	report.UnionCount = int64(len(flagged))
	return report, nil
}

// medianAndMAD computes the median and median absolute deviation of the
// non-NaN values.
func medianAndMAD(values []float64) (float64, float64, error) {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, 0, core.ErrInsufficientData
	}

	median, err := stats.Median(clean)
	if err != nil {
		return 0, 0, err
	}

	deviations := make([]float64, len(clean))
	for i, v := range clean {
		deviations[i] = math.Abs(v - median)
	}
	mad, err := stats.Median(deviations)
	if err != nil {
		return 0, 0, err
	}

	return median, mad, nil
}
