package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"csvprof/domain/profile"
)

// renderReport prints the human-readable profile
func renderReport(w io.Writer, report *profile.Report) {
	fmt.Fprintf(w, "Dataset: %s\n", report.Dataset.Source)
	fmt.Fprintf(w, "Rows: %d  Columns: %d  Missing: %.1f%%\n",
		report.Dataset.RowCount, report.Dataset.ColumnCount, report.Dataset.MissingRate*100)
	fmt.Fprintf(w, "Sampling: %s", report.Sampling.Method)
	if !report.Sampling.Exact() {
		fmt.Fprintf(w, " (stride %d, %d of %d rows)",
			report.Sampling.Stride, report.Sampling.TargetSize, report.Sampling.SourceRows)
	}
	fmt.Fprintf(w, "  Duration: %s\n\n", report.Duration.Round(time.Millisecond))

	renderColumns(w, report.Columns)
	renderOutliers(w, report.Outliers)
	renderCorrelations(w, report.TopPairs)
	renderQuality(w, &report.Quality)
}

func renderColumns(w io.Writer, columns []profile.ColumnSummary) {
	fmt.Fprintln(w, "Columns")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tTYPE\tCOUNT\tMISSING\tUNIQUE\tDETAIL")
	for _, col := range columns {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%.1f%%\t%d\t%s\n",
			col.Column.Name, col.Column.Type, col.Count,
			col.MissingRate()*100, col.UniqueCount, columnDetail(&col))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// columnDetail picks the one-line summary matching the column type
func columnDetail(col *profile.ColumnSummary) string {
	switch {
	case col.Numeric != nil:
		n := col.Numeric
		detail := fmt.Sprintf("mean=%s sd=%s min=%.4g max=%.4g",
			statString(n.Mean), statString(n.StdDev), n.Min, n.Max)
		if n.Quantiles != nil {
			detail += fmt.Sprintf(" median=%.4g", n.Quantiles.Median)
			if n.Quantiles.Source == profile.MarkerEstimated {
				detail += "*"
			}
		}
		return detail
	case col.Categorical != nil:
		c := col.Categorical
		detail := fmt.Sprintf("entropy=%s balance=%s", statString(c.EntropyBits), c.Balance)
		if c.Mode != nil {
			detail = fmt.Sprintf("mode=%q (%.1f%%) %s", c.Mode.Value, c.Mode.Ratio*100, detail)
		}
		if c.ReclassifyHint != "" {
			detail += fmt.Sprintf(" [consider %s]", c.ReclassifyHint)
		}
		return detail
	case col.Date != nil:
		return fmt.Sprintf("%s .. %s (%.0f days)",
			col.Date.Min.Format("2006-01-02"), col.Date.Max.Format("2006-01-02"), col.Date.SpanDays)
	case col.Boolean != nil:
		return fmt.Sprintf("true=%.1f%%", col.Boolean.TrueRatio*100)
	case col.Text != nil:
		return fmt.Sprintf("len %d-%d avg %.1f",
			col.Text.MinLength, col.Text.MaxLength, col.Text.AvgLength)
	default:
		return ""
	}
}

func renderOutliers(w io.Writer, reports []profile.OutlierReport) {
	if len(reports) == 0 {
		return
	}
	fmt.Fprintln(w, "Outliers")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  COLUMN\tIQR\tZ-SCORE\tMAD\tUNION\tEXTREME")
	for _, rep := range reports {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\t%d\n",
			rep.ColumnKey, methodCell(rep.IQR), methodCell(rep.ZScore),
			methodCell(rep.MAD), rep.UnionCount, rep.ExtremeCount)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func methodCell(m profile.MethodResult) string {
	if m.Skipped {
		return "skipped"
	}
	return fmt.Sprintf("%d", m.Count)
}

func renderCorrelations(w io.Writer, pairs []profile.CorrelationPair) {
	if len(pairs) == 0 {
		return
	}
	fmt.Fprintln(w, "Top correlations")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PAIR\tR\tN\tP\tSIGNIFICANT")
	for _, pair := range pairs {
		if !pair.Computable {
			fmt.Fprintf(tw, "  %s ~ %s\tn/a\t%d\t\t(%s)\n",
				pair.ColumnA, pair.ColumnB, pair.SampleSize, pair.Reason)
			continue
		}
		fmt.Fprintf(tw, "  %s ~ %s\t%+.3f\t%d\t%.4f\t%v\n",
			pair.ColumnA, pair.ColumnB, pair.R, pair.SampleSize, pair.PValue, pair.Significant)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// renderQuality prints the quality section
func renderQuality(w io.Writer, q *profile.QualityReport) {
	fmt.Fprintf(w, "Quality: %.1f/100 (%s)\n", q.Composite, q.Grade)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  DIMENSION\tSCORE\tWEIGHT\tBAND\tNOTE")
	for _, dim := range q.Dimensions {
		note := dim.Detail
		if dim.Marker == profile.MarkerNotImplemented {
			note = "not yet implemented"
		}
		fmt.Fprintf(tw, "  %s\t%.1f\t%.0f%%\t%s\t%s\n",
			dim.Dimension, dim.Score, dim.Weight*100, dim.Band, note)
	}
	tw.Flush()

	if len(q.Issues) > 0 {
		fmt.Fprintf(w, "Issues: %d  Estimated remediation: %.0f minutes\n",
			len(q.Issues), q.RemediationMinutes)
	}
}

// statString formats a Stat, showing provenance for non-exact values
func statString(s profile.Stat) string {
	switch s.Marker {
	case profile.MarkerExact:
		return fmt.Sprintf("%.4g", s.Value)
	case profile.MarkerEstimated:
		return fmt.Sprintf("%.4g*", s.Value)
	default:
		return "n/a"
	}
}
