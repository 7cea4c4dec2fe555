// Package export writes accuracy history to spreadsheet workbooks.
package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

var reportHeaders = []string{
	"ID", "Project", "Metric", "Primary Source", "Primary Value",
	"Overall", "Freshness", "Consistency", "Reliability", "Completeness",
	"Discrepancies", "Critical", "Accurate", "Checked At",
}

var summaryHeaders = []string{
	"Project", "Reports", "Accurate", "Accuracy Rate", "Avg Confidence",
	"Critical Issues", "Last Checked",
}

// Workbook writes reports to an XLSX workbook at path: a Reports sheet with
// one row per report and a Summary sheet with a per-project rollup.
func Workbook(reports []model.AccuracyReport, path string) error {
	if len(reports) == 0 {
		return eris.New("export: no reports to export")
	}

	file := xlsx.NewFile()

	if err := addReportsSheet(file, reports); err != nil {
		return err
	}
	if err := addSummarySheet(file, reports); err != nil {
		return err
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addReportsSheet(file *xlsx.File, reports []model.AccuracyReport) error {
	sheet, err := file.AddSheet("Reports")
	if err != nil {
		return eris.Wrap(err, "export: add reports sheet")
	}

	header := sheet.AddRow()
	for _, h := range reportHeaders {
		header.AddCell().SetString(h)
	}

	for i := range reports {
		r := &reports[i]
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.ProjectID)
		row.AddCell().SetString(r.Metric)
		row.AddCell().SetString(string(r.PrimarySource))
		row.AddCell().SetFloat(r.PrimaryValue)
		row.AddCell().SetInt(r.Confidence.Overall)
		row.AddCell().SetInt(r.Confidence.Freshness)
		row.AddCell().SetInt(r.Confidence.Consistency)
		row.AddCell().SetInt(r.Confidence.Reliability)
		row.AddCell().SetInt(r.Confidence.Completeness)
		row.AddCell().SetInt(len(r.Discrepancies))
		row.AddCell().SetInt(r.CriticalCount())
		row.AddCell().SetBool(r.IsAccurate)
		row.AddCell().SetDateTime(r.CheckedAt)
	}
	return nil
}

type projectSummary struct {
	reports     int
	accurate    int
	overallSum  int
	critical    int
	lastChecked time.Time
}

func addSummarySheet(file *xlsx.File, reports []model.AccuracyReport) error {
	sheet, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	// Roll up per project, preserving first-seen order.
	var order []string
	summaries := make(map[string]*projectSummary)
	for i := range reports {
		r := &reports[i]
		s, ok := summaries[r.ProjectID]
		if !ok {
			s = &projectSummary{}
			summaries[r.ProjectID] = s
			order = append(order, r.ProjectID)
		}
		s.reports++
		if r.IsAccurate {
			s.accurate++
		}
		s.overallSum += r.Confidence.Overall
		s.critical += r.CriticalCount()
		if r.CheckedAt.After(s.lastChecked) {
			s.lastChecked = r.CheckedAt
		}
	}

	header := sheet.AddRow()
	for _, h := range summaryHeaders {
		header.AddCell().SetString(h)
	}

	for _, projectID := range order {
		s := summaries[projectID]
		row := sheet.AddRow()
		row.AddCell().SetString(projectID)
		row.AddCell().SetInt(s.reports)
		row.AddCell().SetInt(s.accurate)
		row.AddCell().SetFloatWithFormat(float64(s.accurate)/float64(s.reports), "0.0%")
		row.AddCell().SetFloat(float64(s.overallSum) / float64(s.reports))
		row.AddCell().SetInt(s.critical)
		row.AddCell().SetDateTime(s.lastChecked)
	}
	return nil
}
