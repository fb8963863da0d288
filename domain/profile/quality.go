package profile

// QualityDimension names one of the ten scored data-quality dimensions
type QualityDimension string

const (
	DimCompleteness     QualityDimension = "completeness"
	DimUniqueness       QualityDimension = "uniqueness"
	DimValidity         QualityDimension = "validity"
	DimConsistency      QualityDimension = "consistency"
	DimAccuracy         QualityDimension = "accuracy"
	DimTimeliness       QualityDimension = "timeliness"
	DimIntegrity        QualityDimension = "integrity"
	DimReasonableness   QualityDimension = "reasonableness"
	DimPrecision        QualityDimension = "precision"
	DimRepresentational QualityDimension = "representational"
)

// AllDimensions lists the ten dimensions in their published order
var AllDimensions = []QualityDimension{
	DimCompleteness,
	DimUniqueness,
	DimValidity,
	DimConsistency,
	DimAccuracy,
	DimTimeliness,
	DimIntegrity,
	DimReasonableness,
	DimPrecision,
	DimRepresentational,
}

// DimensionWeights are the fixed, published weights of the composite score.
// They sum to 1.0; the scorer refuses to run if they ever do not.
var DimensionWeights = map[QualityDimension]float64{
	DimCompleteness:     0.20,
	DimUniqueness:       0.10,
	DimValidity:         0.15,
	DimConsistency:      0.15,
	DimAccuracy:         0.10,
	DimTimeliness:       0.05,
	DimIntegrity:        0.10,
	DimReasonableness:   0.05,
	DimPrecision:        0.05,
	DimRepresentational: 0.05,
}

// QualityBand is the qualitative label attached to a score
type QualityBand string

const (
	BandExcellent QualityBand = "Excellent" // >= 90
	BandGood      QualityBand = "Good"      // 75-89
	BandFair      QualityBand = "Fair"      // 60-74
	BandPoor      QualityBand = "Poor"      // < 60
)

// BandForScore maps a 0-100 score to its band
func BandForScore(score float64) QualityBand {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 75:
		return BandGood
	case score >= 60:
		return BandFair
	default:
		return BandPoor
	}
}

// QualityDimensionScore is one dimension's result.
// Marker distinguishes computed scores from heuristic placeholders:
// dimensions with no configured analysis carry MarkerNotImplemented and
// a neutral score rather than pretending to be measured.
type QualityDimensionScore struct {
	Dimension QualityDimension `json:"dimension"`
	Score     float64          `json:"score"` // 0-100
	Weight    float64          `json:"weight"`
	Band      QualityBand      `json:"band"`
	Marker    Marker           `json:"marker"`
	Detail    string           `json:"detail,omitempty"`
}

// QualityIssue is one concrete problem feeding the remediation estimate
type QualityIssue struct {
	Kind      string `json:"kind"` // e.g. "missing_values", "outliers", "mixed_types"
	ColumnKey string `json:"column_key,omitempty"`
	Count     int64  `json:"count"`
	Detail    string `json:"detail,omitempty"`
}

// QualityReport aggregates the ten dimensions into the composite score.
// Recomputing it from the same dimension inputs always yields the same
// output; the scorer holds no state across runs.
type QualityReport struct {
	Dimensions         []QualityDimensionScore `json:"dimensions"`
	Composite          float64                 `json:"composite"` // weighted average, 0-100
	Grade              QualityBand             `json:"grade"`
	Issues             []QualityIssue          `json:"issues,omitempty"`
	RemediationMinutes float64                 `json:"remediation_minutes"`
}
