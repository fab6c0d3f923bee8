package report

import (
	"context"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
)

// ReportService defines the interface for timesheet reporting
type ReportService interface {
	// ListTimesheets lists day timesheets with pagination
	ListTimesheets(ctx context.Context, actor user.Actor, filter TimesheetFilter) (ListTimesheetResponse, error)

	// SummarizeTimesheets totals hours and breaks per employee for a period
	SummarizeTimesheets(ctx context.Context, actor user.Actor, req SummaryRequest) (TimesheetSummaryReport, error)

	// ExportTimesheets renders the period summary and its day rows as an XLSX workbook
	ExportTimesheets(ctx context.Context, actor user.Actor, req SummaryRequest) ([]byte, string, error)

	// TodayOverview collects live counters for the company dashboard
	TodayOverview(ctx context.Context, actor user.Actor) (TodayOverview, error)
}
