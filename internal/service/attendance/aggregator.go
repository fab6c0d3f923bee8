package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/metrics"
)

var breakTypes = []attendance.EventType{attendance.EventBreakStart, attendance.EventBreakEnd}

// Aggregator turns a closed session into its timesheet row.
type Aggregator struct {
	events     attendance.EventRepository
	timesheets attendance.TimesheetRepository
	loc        *time.Location
}

func NewAggregator(events attendance.EventRepository, timesheets attendance.TimesheetRepository, loc *time.Location) *Aggregator {
	return &Aggregator{
		events:     events,
		timesheets: timesheets,
		loc:        loc,
	}
}

// CloseSession computes totals for the session clockIn..clockOut and merges them
// into the timesheet of processedAt's local day. The returned row is the stored
// one, which differs from the computed one when a later clock-out already won.
func (a *Aggregator) CloseSession(ctx context.Context, clockIn, clockOut attendance.Event, processedAt time.Time) (attendance.Timesheet, error) {
	breaks, err := a.events.FindRange(ctx, clockIn.EmployeeID, clockIn.CompanyID, breakTypes, clockIn.CapturedAt, clockOut.CapturedAt)
	if err != nil {
		return attendance.Timesheet{}, fmt.Errorf("failed to load breaks: %w", err)
	}

	totals := attendance.ComputeTotals(clockIn, clockOut, breaks)

	stored, err := a.timesheets.Upsert(ctx, attendance.Timesheet{
		EmployeeID:   clockIn.EmployeeID,
		CompanyID:    clockIn.CompanyID,
		Date:         attendance.DayBucket(processedAt, a.loc),
		ClockInID:    clockIn.ID,
		ClockOutID:   clockOut.ID,
		ClockOutAt:   clockOut.CapturedAt,
		HoursWorked:  totals.HoursWorked,
		BreakMinutes: totals.BreakMinutes,
		Notes:        clockOut.Notes,
	})
	if err != nil {
		return attendance.Timesheet{}, fmt.Errorf("failed to upsert timesheet: %w", err)
	}

	metrics.RecordTimesheetUpsert(stored.ClockOutID == clockOut.ID)

	return stored, nil
}
