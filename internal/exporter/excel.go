// Package exporter renders built reports into xlsx workbooks.
package exporter

import (
	"fmt"
	"strings"

	"aircheck/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	projectSheet = "Project"
	detailSheet  = "Detail"
	summarySheet = "Summary"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExcelEmitter implements domain.ReportEmitter producing a three-sheet
// workbook: project metadata, one detail row per match result, and the
// per-(date, stream) summary with a grand-total row.
type ExcelEmitter struct{}

// NewExcelEmitter creates a new ExcelEmitter
func NewExcelEmitter() *ExcelEmitter {
	return &ExcelEmitter{}
}

// ContentType returns the xlsx MIME type
func (e *ExcelEmitter) ContentType() string {
	return xlsxContentType
}

// Filename returns the timestamp-suffixed attachment name for the report
func (e *ExcelEmitter) Filename(report *domain.Report) string {
	name := slug(report.Project.Name)
	if name == "" {
		name = slug(report.Project.ProviderID)
	}
	return fmt.Sprintf("%s-report-%s.xlsx", name, report.GeneratedAt.Format("20060102-150405"))
}

// Emit serializes the report into xlsx bytes
func (e *ExcelEmitter) Emit(report *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", projectSheet); err != nil {
		return nil, fmt.Errorf("failed to rename project sheet: %w", err)
	}
	if err := e.writeProjectSheet(f, report); err != nil {
		return nil, err
	}
	if err := e.writeDetailSheet(f, report); err != nil {
		return nil, err
	}
	if err := e.writeSummarySheet(f, report); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ExcelEmitter) writeProjectSheet(f *excelize.File, report *domain.Report) error {
	project := report.Project
	rows := [][]interface{}{
		{"Project ID", project.ProviderID},
		{"Name", project.Name},
		{"Client", project.Client},
		{"Agency", project.Agency},
		{"Brand", project.Brand},
		{"Product", project.Product},
		{"Client Type", project.ClientType},
		{"Tolerance (min)", project.ToleranceMinutes},
		{"Report Types", strings.Join(project.ReportTypes, ", ")},
		{"Recipients", strings.Join(project.Recipients, ", ")},
		{"Materials", len(project.Materials)},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(projectSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("failed to write project sheet row %d: %w", i+1, err)
		}
	}
	return nil
}

func (e *ExcelEmitter) writeDetailSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("failed to create detail sheet: %w", err)
	}

	header := []interface{}{"Stream", "Title", "Date", "Scheduled Time", "Detected Time", "Offset (min)", "Status", "ACR ID"}
	if err := f.SetSheetRow(detailSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write detail header: %w", err)
	}

	for i, result := range report.Results {
		offset := ""
		if result.OffsetMinutes != nil {
			offset = fmt.Sprintf("%+d", *result.OffsetMinutes)
		}
		row := []interface{}{
			result.StreamName,
			result.Title,
			result.Date,
			result.ScheduledTime,
			result.DetectedTime,
			offset,
			string(result.Status),
			result.ACRID,
		}
		if err := f.SetSheetRow(detailSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("failed to write detail row %d: %w", i+2, err)
		}
	}
	return nil
}

func (e *ExcelEmitter) writeSummarySheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header := []interface{}{"Date", "Stream", "Detected", "Missing", "Out of Schedule", "Total"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	row := 2
	for _, bucket := range report.Summary.Buckets {
		values := []interface{}{
			bucket.Date,
			bucket.StreamName,
			bucket.Detected,
			bucket.Missing,
			bucket.OutOfSchedule,
			bucket.Total,
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", row, err)
		}
		row++
	}

	totals := report.Summary.Totals
	values := []interface{}{
		"",
		totals.StreamName,
		totals.Detected,
		totals.Missing,
		totals.OutOfSchedule,
		totals.Total,
	}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &values); err != nil {
		return fmt.Errorf("failed to write summary totals row: %w", err)
	}
	return nil
}

// slug lowercases a name and replaces runs of non-alphanumerics with dashes
func slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
