package quality

import (
	"fmt"
	"math"
	"time"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

// placeholderScore is the neutral value carried by dimensions that have no
// configured analysis. They are labeled not-yet-implemented so reports never
// present them as measured.
const placeholderScore = 50.0

// remediationMinutes is the fixed per-issue-type time table behind the
// remediation estimate.
var remediationMinutes = map[string]float64{
	"missing_values":   0.02, // per missing cell
	"outliers":         0.05, // per flagged row
	"mixed_types":      15,   // per low-confidence column
	"high_cardinality": 10,   // per miscategorized column
}

// Input is everything the scorer consumes. It is assembled from the sealed
// summaries of one run; the scorer reads it and nothing else, so scoring the
// same input twice always yields the same report.
type Input struct {
	Columns  []profile.ColumnSummary
	Outliers []profile.OutlierReport
	AsOf     time.Time // reference point for the timeliness heuristic
}

// Scorer aggregates the ten quality dimensions into the composite score.
// It holds only configuration, never run state.
type Scorer struct {
	confidenceFloor float64 // below this, a column counts as type-inconsistent
}

// NewScorer creates a scorer; confidenceFloor mirrors the classifier threshold
func NewScorer(confidenceFloor float64) *Scorer {
	return &Scorer{confidenceFloor: confidenceFloor}
}

// Score computes all ten dimensions, the weighted composite, the grade and
// the remediation estimate.
func (s *Scorer) Score(input Input) (*profile.QualityReport, error) {
	if len(input.Columns) == 0 {
		return nil, core.ErrNoColumns
	}
	if err := checkWeights(); err != nil {
		return nil, err
	}

	report := &profile.QualityReport{}

	dims := []profile.QualityDimensionScore{
		s.completeness(input),
		s.uniqueness(input),
		s.validity(input),
		s.consistency(input),
		s.accuracy(input),
		s.timeliness(input),
		s.placeholder(profile.DimIntegrity, "cross-field integrity rules"),
		s.reasonableness(input),
		s.placeholder(profile.DimPrecision, "numeric precision analysis"),
		s.placeholder(profile.DimRepresentational, "representation conformance analysis"),
	}

	composite := 0.0
	for i := range dims {
		dims[i].Weight = profile.DimensionWeights[dims[i].Dimension]
		dims[i].Band = profile.BandForScore(dims[i].Score)
		composite += dims[i].Weight * dims[i].Score
	}

	report.Dimensions = dims
	report.Composite = clampScore(composite)
	report.Grade = profile.BandForScore(report.Composite)
	report.Issues = collectIssues(input)
	report.RemediationMinutes = estimateRemediation(report.Issues)

	return report, nil
}

// completeness scores the fraction of non-missing cells, straight from
// the raw counts.
func (s *Scorer) completeness(input Input) profile.QualityDimensionScore {
	var observed, missing int64
	for _, col := range input.Columns {
		observed += col.Count
		missing += col.MissingCount
	}
	total := observed + missing
	score := 100.0
	if total > 0 {
		score = 100 * float64(observed) / float64(total)
	}
	return computed(profile.DimCompleteness, score,
		fmt.Sprintf("%d of %d cells present", observed, total))
}

// uniqueness penalizes identifier columns carrying duplicate values;
// columns of other types are expected to repeat and contribute full score.
func (s *Scorer) uniqueness(input Input) profile.QualityDimensionScore {
	sum := 0.0
	for _, col := range input.Columns {
		if col.Column.Type == profile.TypeIdentifier && col.Count > 0 {
			sum += math.Min(1, float64(col.UniqueCount)/float64(col.Count))
		} else {
			sum += 1
		}
	}
	score := 100 * sum / float64(len(input.Columns))
	return computed(profile.DimUniqueness, score, "duplicate check over identifier columns")
}

// validity scores how cleanly values matched their classified types,
// using the classifier's per-column match rates.
func (s *Scorer) validity(input Input) profile.QualityDimensionScore {
	sum := 0.0
	for _, col := range input.Columns {
		sum += col.Column.Confidence
	}
	score := 100 * sum / float64(len(input.Columns))
	return computed(profile.DimValidity, score, "type predicate match rates")
}

// consistency scores the fraction of columns whose type detection was
// unambiguous.
func (s *Scorer) consistency(input Input) profile.QualityDimensionScore {
	consistent := 0
	for _, col := range input.Columns {
		if col.Column.Confidence >= s.confidenceFloor {
			consistent++
		}
	}
	score := 100 * float64(consistent) / float64(len(input.Columns))
	return computed(profile.DimConsistency, score,
		fmt.Sprintf("%d of %d columns with unambiguous types", consistent, len(input.Columns)))
}

// accuracy scores numeric columns by the share of rows no outlier rule
// flagged. Without numeric columns there is nothing to measure.
func (s *Scorer) accuracy(input Input) profile.QualityDimensionScore {
	if len(input.Outliers) == 0 {
		return placeholderDim(profile.DimAccuracy, "no numeric columns to assess")
	}

	counts := columnCounts(input.Columns)
	sum := 0.0
	n := 0
	marker := profile.MarkerExact
	for _, rep := range input.Outliers {
		total := counts[rep.ColumnKey]
		if total == 0 {
			continue
		}
		clean := 1 - float64(rep.UnionCount)/float64(total)
		if clean < 0 {
			clean = 0
		}
		sum += clean
		n++
		if rep.Basis == profile.MarkerEstimated {
			marker = profile.MarkerEstimated
		}
	}
	if n == 0 {
		return placeholderDim(profile.DimAccuracy, "no numeric columns to assess")
	}
	return computedAs(profile.DimAccuracy, 100*sum/float64(n), marker,
		"share of rows free of flagged outliers")
}

// timeliness is heuristic: the fresher the newest date column value, the
// higher the score. Without date columns it stays a placeholder.
func (s *Scorer) timeliness(input Input) profile.QualityDimensionScore {
	var newest time.Time
	found := false
	for _, col := range input.Columns {
		if col.Date != nil && (!found || col.Date.Max.After(newest)) {
			newest = col.Date.Max
			found = true
		}
	}
	if !found || input.AsOf.IsZero() {
		return placeholderDim(profile.DimTimeliness, "no date columns to assess")
	}

	ageDays := input.AsOf.Sub(newest).Hours() / 24
	var score float64
	switch {
	case ageDays <= 30:
		score = 100
	case ageDays >= 365:
		score = 20
	default:
		// linear decay between one month and one year
		score = 100 - 80*(ageDays-30)/335
	}
	return computed(profile.DimTimeliness, score,
		fmt.Sprintf("newest date value %.0f days old", ageDays))
}

// reasonableness scores numeric columns by the absence of extreme
// (3.0-fence) outliers.
func (s *Scorer) reasonableness(input Input) profile.QualityDimensionScore {
	if len(input.Outliers) == 0 {
		return placeholderDim(profile.DimReasonableness, "no numeric columns to assess")
	}

	counts := columnCounts(input.Columns)
	sum := 0.0
	n := 0
	marker := profile.MarkerExact
	for _, rep := range input.Outliers {
		total := counts[rep.ColumnKey]
		if total == 0 {
			continue
		}
		clean := 1 - float64(rep.ExtremeCount)/float64(total)
		if clean < 0 {
			clean = 0
		}
		sum += clean
		n++
		if rep.Basis == profile.MarkerEstimated {
			marker = profile.MarkerEstimated
		}
	}
	if n == 0 {
		return placeholderDim(profile.DimReasonableness, "no numeric columns to assess")
	}
	return computedAs(profile.DimReasonableness, 100*sum/float64(n), marker,
		"share of rows inside extreme fences")
}

// placeholder builds the labeled stand-in for a dimension with no
// configured analysis.
func (s *Scorer) placeholder(dim profile.QualityDimension, what string) profile.QualityDimensionScore {
	return placeholderDim(dim, what+" not configured")
}

func computed(dim profile.QualityDimension, score float64, detail string) profile.QualityDimensionScore {
	return computedAs(dim, score, profile.MarkerExact, detail)
}

// computedAs carries the basis of the underlying evidence, so dimensions
// aggregated from sampled statistics stay labeled as estimates.
func computedAs(dim profile.QualityDimension, score float64, marker profile.Marker, detail string) profile.QualityDimensionScore {
	return profile.QualityDimensionScore{
		Dimension: dim,
		Score:     clampScore(score),
		Marker:    marker,
		Detail:    detail,
	}
}

func placeholderDim(dim profile.QualityDimension, detail string) profile.QualityDimensionScore {
	return profile.QualityDimensionScore{
		Dimension: dim,
		Score:     placeholderScore,
		Marker:    profile.MarkerNotImplemented,
		Detail:    detail,
	}
}

// collectIssues turns the summaries into the concrete issue list feeding
// the remediation estimate.
func collectIssues(input Input) []profile.QualityIssue {
	var issues []profile.QualityIssue

	for _, col := range input.Columns {
		if col.MissingCount > 0 {
			issues = append(issues, profile.QualityIssue{
				Kind:      "missing_values",
				ColumnKey: col.Column.Key.String(),
				Count:     col.MissingCount,
			})
		}
		if col.Column.Confidence < 0.9 {
			issues = append(issues, profile.QualityIssue{
				Kind:      "mixed_types",
				ColumnKey: col.Column.Key.String(),
				Count:     1,
				Detail:    fmt.Sprintf("type confidence %.2f", col.Column.Confidence),
			})
		}
		if col.Categorical != nil && col.Categorical.ReclassifyHint != "" {
			issues = append(issues, profile.QualityIssue{
				Kind:      "high_cardinality",
				ColumnKey: col.Column.Key.String(),
				Count:     1,
				Detail:    fmt.Sprintf("consider reclassifying as %s", col.Categorical.ReclassifyHint),
			})
		}
	}

	for _, rep := range input.Outliers {
		if rep.UnionCount > 0 {
			issues = append(issues, profile.QualityIssue{
				Kind:      "outliers",
				ColumnKey: rep.ColumnKey.String(),
				Count:     rep.UnionCount,
			})
		}
	}

	return issues
}

// estimateRemediation applies the fixed time table to the issue list
func estimateRemediation(issues []profile.QualityIssue) float64 {
	total := 0.0
	for _, issue := range issues {
		total += float64(issue.Count) * remediationMinutes[issue.Kind]
	}
	return math.Round(total*100) / 100
}

func columnCounts(columns []profile.ColumnSummary) map[core.ColumnKey]int64 {
	counts := make(map[core.ColumnKey]int64, len(columns))
	for _, col := range columns {
		counts[col.Column.Key] = col.Count
	}
	return counts
}

// checkWeights refuses to score if the published weights drift from 1.0
func checkWeights() error {
	sum := 0.0
	for _, dim := range profile.AllDimensions {
		sum += profile.DimensionWeights[dim]
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return core.NewValidationError("dimension_weights", fmt.Sprintf("sum to %.6f, want 1.0", sum))
	}
	return nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
