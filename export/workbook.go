package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetZ       = "Zscore"
	sheetHist    = "Histogram"
	sheetSummary = "Summary"
)

// Report is everything a workbook shows.
type Report struct {
	Title   string
	Rows    []Row
	Buckets []Bucket
	Summary Summary
	// FirstColumnHeader names the label column, e.g. "time" or "sample".
	FirstColumnHeader string
}

// WorkbookPath returns path with its extension replaced by .xlsx.
func WorkbookPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
}

// WriteWorkbook writes rep to an Excel file at path with a z-score line chart
// and a histogram column chart.
func WriteWorkbook(rep Report, path string) error {
	if len(rep.Rows) == 0 {
		return errors.New("no data to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	f.NewSheet(sheetZ)
	f.NewSheet(sheetHist)
	f.NewSheet(sheetSummary)
	f.DeleteSheet(defaultSheet)

	if err := writeZSheet(f, rep); err != nil {
		return err
	}
	if err := writeHistSheet(f, rep); err != nil {
		return err
	}
	if err := writeSummarySheet(f, rep.Summary); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeZSheet(f *excelize.File, rep Report) error {
	header := rep.FirstColumnHeader
	if header == "" {
		header = "sample"
	}
	if err := f.SetSheetRow(sheetZ, "A1", &[]any{header, "value", "cumulative_mean", "z_test"}); err != nil {
		return err
	}
	for i, r := range rep.Rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetZ, cell, &[]any{r.Label, int(r.Value), r.CumulativeMean, r.ZScore}); err != nil {
			return err
		}
	}

	endRow := len(rep.Rows) + 1
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$D$1", sheetZ),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetZ, endRow),
			Values:     fmt.Sprintf("%s!$D$2:$D$%d", sheetZ, endRow),
		}},
		Title:  []excelize.RichTextRun{{Text: rep.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Frames"}}},
		YAxis: excelize.ChartAxis{
			Title:          []excelize.RichTextRun{{Text: "Z-score of cumulative mean"}},
			MajorGridLines: true,
		},
	}
	return f.AddChart(sheetZ, "F2", chart)
}

func writeHistSheet(f *excelize.File, rep Report) error {
	if err := f.SetSheetRow(sheetHist, "A1", &[]any{"bucket", "count", "expected"}); err != nil {
		return err
	}
	for i, b := range rep.Buckets {
		label := fmt.Sprintf("%d-%d", b.Lo, b.Hi-1)
		if err := f.SetSheetRow(sheetHist, fmt.Sprintf("A%d", i+2), &[]any{label, b.Count, b.Expected}); err != nil {
			return err
		}
	}
	if len(rep.Buckets) == 0 {
		return nil
	}
	endRow := len(rep.Buckets) + 1
	cats := fmt.Sprintf("%s!$A$2:$A$%d", sheetHist, endRow)
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{Name: fmt.Sprintf("%s!$B$1", sheetHist), Categories: cats, Values: fmt.Sprintf("%s!$B$2:$B$%d", sheetHist, endRow)},
			{Name: fmt.Sprintf("%s!$C$1", sheetHist), Categories: cats, Values: fmt.Sprintf("%s!$C$2:$C$%d", sheetHist, endRow)},
		},
		Title:  []excelize.RichTextRun{{Text: "Value distribution"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
	return f.AddChart(sheetHist, "E2", chart)
}

func writeSummarySheet(f *excelize.File, s Summary) error {
	rows := [][]any{
		{"frames", s.Count},
		{"mean", s.Mean},
		{"final_z", s.FinalZ},
		{"min", int(s.Min)},
		{"max", int(s.Max)},
		{"low_share", s.LowShare},
		{"expected_low_share", s.ExpectedLowShare},
		{"low_share_z", s.LowShareZ},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return err
		}
	}
	return nil
}
