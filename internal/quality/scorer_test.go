package quality

import (
	"math"
	"reflect"
	"testing"
	"time"

	"csvprof/domain/core"
	"csvprof/domain/profile"
)

func column(name string, colType profile.ColumnType, confidence float64, count, missing, unique int64) profile.ColumnSummary {
	return profile.ColumnSummary{
		Column:       profile.NewColumn(name, colType, confidence),
		Count:        count,
		MissingCount: missing,
		UniqueCount:  unique,
	}
}

func cleanInput() Input {
	return Input{
		Columns: []profile.ColumnSummary{
			column("id", profile.TypeIdentifier, 1.0, 100, 0, 100),
			column("amount", profile.TypeFloat, 1.0, 100, 0, 87),
			column("region", profile.TypeCategorical, 1.0, 100, 0, 4),
		},
		Outliers: []profile.OutlierReport{
			{ColumnKey: core.ColumnKey("amount"), UnionCount: 0},
		},
		AsOf: time.Now(),
	}
}

func dimension(t *testing.T, report *profile.QualityReport, dim profile.QualityDimension) profile.QualityDimensionScore {
	t.Helper()
	for _, d := range report.Dimensions {
		if d.Dimension == dim {
			return d
		}
	}
	t.Fatalf("dimension %s missing from report", dim)
	return profile.QualityDimensionScore{}
}

func TestScoreCleanDataset(t *testing.T) {
	report, err := NewScorer(0.9).Score(cleanInput())
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if len(report.Dimensions) != 10 {
		t.Fatalf("dimensions = %d, want 10", len(report.Dimensions))
	}
	if report.Composite < 0 || report.Composite > 100 {
		t.Fatalf("composite = %v, out of [0, 100]", report.Composite)
	}

	for _, dim := range []profile.QualityDimension{
		profile.DimCompleteness, profile.DimUniqueness,
		profile.DimValidity, profile.DimConsistency, profile.DimAccuracy,
	} {
		d := dimension(t, report, dim)
		if d.Score != 100 {
			t.Errorf("%s = %v on a clean dataset, want 100", dim, d.Score)
		}
		if d.Marker != profile.MarkerExact {
			t.Errorf("%s marker = %s, want exact", dim, d.Marker)
		}
	}
}

func TestScoreWeightsApplied(t *testing.T) {
	report, err := NewScorer(0.9).Score(cleanInput())
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	expected := 0.0
	weightSum := 0.0
	for _, d := range report.Dimensions {
		expected += d.Weight * d.Score
		weightSum += d.Weight
	}
	if math.Abs(weightSum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", weightSum)
	}
	if math.Abs(report.Composite-expected) > 1e-9 {
		t.Errorf("composite = %v, want weighted sum %v", report.Composite, expected)
	}
}

func TestScoreIdempotent(t *testing.T) {
	scorer := NewScorer(0.9)
	input := cleanInput()

	first, err := scorer.Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	second, err := scorer.Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("scoring the same input twice must yield identical reports")
	}
}

func TestScoreCompleteness(t *testing.T) {
	input := Input{
		Columns: []profile.ColumnSummary{
			column("a", profile.TypeFloat, 1.0, 75, 25, 10),
			column("b", profile.TypeFloat, 1.0, 100, 0, 10),
		},
		AsOf: time.Now(),
	}
	report, err := NewScorer(0.9).Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// 175 of 200 cells present
	d := dimension(t, report, profile.DimCompleteness)
	if math.Abs(d.Score-87.5) > 1e-9 {
		t.Errorf("completeness = %v, want 87.5", d.Score)
	}
}

func TestScoreUniquenessPenalizesDuplicateIdentifiers(t *testing.T) {
	input := Input{
		Columns: []profile.ColumnSummary{
			column("id", profile.TypeIdentifier, 1.0, 100, 0, 50),
			column("region", profile.TypeCategorical, 1.0, 100, 0, 4),
		},
		AsOf: time.Now(),
	}
	report, err := NewScorer(0.9).Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// identifier at 50% distinct, categorical untouched: (0.5 + 1) / 2
	d := dimension(t, report, profile.DimUniqueness)
	if math.Abs(d.Score-75) > 1e-9 {
		t.Errorf("uniqueness = %v, want 75", d.Score)
	}
}

func TestScoreAccuracyFromOutliers(t *testing.T) {
	input := cleanInput()
	input.Outliers = []profile.OutlierReport{
		{ColumnKey: core.ColumnKey("amount"), UnionCount: 10},
	}
	report, err := NewScorer(0.9).Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// 10 of 100 rows flagged
	d := dimension(t, report, profile.DimAccuracy)
	if math.Abs(d.Score-90) > 1e-9 {
		t.Errorf("accuracy = %v, want 90", d.Score)
	}
}

func TestScorePlaceholdersLabeled(t *testing.T) {
	report, err := NewScorer(0.9).Score(cleanInput())
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	for _, dim := range []profile.QualityDimension{
		profile.DimIntegrity, profile.DimPrecision, profile.DimRepresentational,
	} {
		d := dimension(t, report, dim)
		if d.Marker != profile.MarkerNotImplemented {
			t.Errorf("%s marker = %s, must be labeled not yet implemented", dim, d.Marker)
		}
	}
	// no date columns: timeliness is also a placeholder
	d := dimension(t, report, profile.DimTimeliness)
	if d.Marker != profile.MarkerNotImplemented {
		t.Errorf("timeliness marker = %s, want placeholder without date columns", d.Marker)
	}
}

func TestScoreTimelinessFromDates(t *testing.T) {
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	fresh := column("seen_at", profile.TypeDate, 1.0, 100, 0, 90)
	fresh.Date = &profile.DateSummary{
		Min: asOf.AddDate(-1, 0, 0),
		Max: asOf.AddDate(0, 0, -5),
	}

	input := Input{Columns: []profile.ColumnSummary{fresh}, AsOf: asOf}
	report, err := NewScorer(0.9).Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	d := dimension(t, report, profile.DimTimeliness)
	if d.Marker != profile.MarkerExact {
		t.Fatalf("timeliness marker = %s, want computed", d.Marker)
	}
	if d.Score != 100 {
		t.Errorf("timeliness = %v for 5-day-old data, want 100", d.Score)
	}
}

func TestScoreGradeBands(t *testing.T) {
	cases := []struct {
		score float64
		want  profile.QualityBand
	}{
		{95, profile.BandExcellent},
		{90, profile.BandExcellent},
		{80, profile.BandGood},
		{60, profile.BandFair},
		{30, profile.BandPoor},
	}
	for _, tc := range cases {
		if got := profile.BandForScore(tc.score); got != tc.want {
			t.Errorf("band(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScoreIssuesAndRemediation(t *testing.T) {
	input := Input{
		Columns: []profile.ColumnSummary{
			column("a", profile.TypeFloat, 1.0, 80, 20, 10),
		},
		Outliers: []profile.OutlierReport{
			{ColumnKey: core.ColumnKey("a"), UnionCount: 5},
		},
		AsOf: time.Now(),
	}
	report, err := NewScorer(0.9).Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(report.Issues) != 2 {
		t.Fatalf("issues = %d, want missing_values and outliers", len(report.Issues))
	}
	if report.RemediationMinutes <= 0 {
		t.Errorf("remediation = %v, want positive with open issues", report.RemediationMinutes)
	}
}

func TestScoreNoColumns(t *testing.T) {
	if _, err := NewScorer(0.9).Score(Input{}); err != core.ErrNoColumns {
		t.Errorf("error = %v, want ErrNoColumns", err)
	}
}

func TestScoreSampledOutlierBasisPropagates(t *testing.T) {
	input := cleanInput()
	input.Outliers = []profile.OutlierReport{
		{
			ColumnKey:    core.ColumnKey("amount"),
			UnionCount:   5,
			ExtremeCount: 2,
			Basis:        profile.MarkerEstimated,
		},
	}

	report, err := NewScorer(0.9).Score(input)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if got := dimension(t, report, profile.DimAccuracy).Marker; got != profile.MarkerEstimated {
		t.Errorf("accuracy marker = %s, want %s for sampled fences", got, profile.MarkerEstimated)
	}
	if got := dimension(t, report, profile.DimReasonableness).Marker; got != profile.MarkerEstimated {
		t.Errorf("reasonableness marker = %s, want %s for sampled fences", got, profile.MarkerEstimated)
	}
	// dimensions built from raw counts stay exact
	if got := dimension(t, report, profile.DimCompleteness).Marker; got != profile.MarkerExact {
		t.Errorf("completeness marker = %s, want %s", got, profile.MarkerExact)
	}
}
