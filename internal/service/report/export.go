package report

import (
	"context"
	"fmt"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/report"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	timesheetsSheet = "Timesheets"
	exportPageSize  = 100
)

// ExportTimesheets implements report.ReportService. The workbook has a per
// employee summary sheet and one row per day timesheet.
func (s *ReportServiceImpl) ExportTimesheets(ctx context.Context, actor user.Actor, req report.SummaryRequest) ([]byte, string, error) {
	summary, err := s.SummarizeTimesheets(ctx, actor, req)
	if err != nil {
		return nil, "", err
	}

	days, err := s.collectTimesheets(ctx, actor, req)
	if err != nil {
		return nil, "", err
	}
	if len(summary.Rows) == 0 && len(days) == 0 {
		return nil, "", report.ErrNoDataFound
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	if _, err := f.NewSheet(timesheetsSheet); err != nil {
		return nil, "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	if err := writeSummarySheet(f, header, summary); err != nil {
		return nil, "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	if err := writeTimesheetsSheet(f, header, days); err != nil {
		return nil, "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	filename := fmt.Sprintf("timesheets_%s_%s.xlsx", summary.PeriodStart, summary.PeriodEnd)
	return buf.Bytes(), filename, nil
}

func (s *ReportServiceImpl) collectTimesheets(ctx context.Context, actor user.Actor, req report.SummaryRequest) ([]attendance.TimesheetResponse, error) {
	var out []attendance.TimesheetResponse
	for page := 1; ; page++ {
		list, err := s.ListTimesheets(ctx, actor, report.TimesheetFilter{
			EmployeeID: req.EmployeeID,
			StartDate:  &req.StartDate,
			EndDate:    &req.EndDate,
			Page:       page,
			Limit:      exportPageSize,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, list.Timesheets...)
		if page >= list.TotalPages {
			return out, nil
		}
	}
}

func writeSummarySheet(f *excelize.File, header int, summary report.TimesheetSummaryReport) error {
	meta := [][]any{
		{"Period", summary.PeriodStart + " to " + summary.PeriodEnd},
		{"Generated", summary.GeneratedAt},
		{"Employees", summary.TotalEmployees},
		{"Total hours", summary.TotalHours},
	}
	for i, row := range meta {
		if err := f.SetSheetRow(summarySheet, cell(1, i+1), &row); err != nil {
			return err
		}
	}

	headerRow := len(meta) + 2
	columns := []any{"Employee code", "Employee", "Days worked", "Hours", "Break minutes"}
	if err := f.SetSheetRow(summarySheet, cell(1, headerRow), &columns); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, cell(1, headerRow), cell(len(columns), headerRow), header); err != nil {
		return err
	}

	for i, r := range summary.Rows {
		row := []any{r.EmployeeCode, r.EmployeeName, r.DaysWorked, r.TotalHours, r.TotalBreakMinutes}
		if err := f.SetSheetRow(summarySheet, cell(1, headerRow+1+i), &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeTimesheetsSheet(f *excelize.File, header int, days []attendance.TimesheetResponse) error {
	columns := []any{"Date", "Employee code", "Employee", "Hours", "Break minutes", "Notes"}
	if err := f.SetSheetRow(timesheetsSheet, "A1", &columns); err != nil {
		return err
	}
	if err := f.SetCellStyle(timesheetsSheet, "A1", cell(len(columns), 1), header); err != nil {
		return err
	}

	for i, ts := range days {
		row := []any{ts.Date, deref(ts.EmployeeCode), deref(ts.EmployeeName), roundHours(ts.HoursWorked), ts.BreakMinutes, deref(ts.Notes)}
		if err := f.SetSheetRow(timesheetsSheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(timesheetsSheet, "A", "C", 20)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
