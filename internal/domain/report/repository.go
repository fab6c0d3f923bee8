package report

import (
	"context"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// ListTimesheets returns timesheets joined with employee names, newest day first
	ListTimesheets(ctx context.Context, filter TimesheetFilter, companyID string) ([]attendance.Timesheet, int64, error)

	// SummarizeTimesheets aggregates timesheets per employee over [start, end]
	SummarizeTimesheets(ctx context.Context, companyID string, start, end time.Time, employeeID *string) ([]SummaryRow, error)

	CountActiveEmployees(ctx context.Context, companyID string) (int, error)

	// CountOpenStates counts employees whose latest event leaves them clocked in or on break
	CountOpenStates(ctx context.Context, companyID string) (StateCounts, error)

	CountEventsSince(ctx context.Context, companyID string, since time.Time) (int, error)

	SumHoursForDate(ctx context.Context, companyID string, date time.Time) (float64, error)

	RecentEvents(ctx context.Context, companyID string, limit int) ([]attendance.Event, error)
}
