package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_KeepsLatestClockOut(t *testing.T) {
	ctx := context.Background()
	events := &memEventRepo{}
	timesheets := newMemTimesheetRepo()
	agg := NewAggregator(events, timesheets, time.UTC)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	insert := func(t *testing.T, et attendance.EventType, at time.Time) attendance.Event {
		ev, err := events.Insert(ctx, attendance.Event{
			EmployeeID: "emp-1",
			CompanyID:  companyA,
			EventType:  et,
			CapturedAt: at,
		})
		require.NoError(t, err)
		return ev
	}

	morningIn := insert(t, attendance.EventClockIn, day.Add(8*time.Hour))
	morningOut := insert(t, attendance.EventClockOut, day.Add(12*time.Hour))
	eveningIn := insert(t, attendance.EventClockIn, day.Add(13*time.Hour))
	eveningOut := insert(t, attendance.EventClockOut, day.Add(17*time.Hour))

	latest, err := agg.CloseSession(ctx, eveningIn, eveningOut, eveningOut.CapturedAt)
	require.NoError(t, err)
	assert.Equal(t, eveningOut.ID, latest.ClockOutID)

	// A recompute for an older clock-out must not replace the newer row
	stale, err := agg.CloseSession(ctx, morningIn, morningOut, eveningOut.CapturedAt)
	require.NoError(t, err)
	assert.Equal(t, eveningOut.ID, stale.ClockOutID)
	assert.InDelta(t, 4.0, stale.HoursWorked, 0.0001)

	stored, err := timesheets.GetByEmployeeAndDate(ctx, "emp-1", companyA, day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, eveningIn.ID, stored.ClockInID)
}

func TestAggregator_IgnoresBreaksOutsideSession(t *testing.T) {
	ctx := context.Background()
	events := &memEventRepo{}
	agg := NewAggregator(events, newMemTimesheetRepo(), time.UTC)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	add := func(et attendance.EventType, at time.Duration) attendance.Event {
		ev, _ := events.Insert(ctx, attendance.Event{EmployeeID: "emp-1", CompanyID: companyA, EventType: et, CapturedAt: day.Add(at)})
		return ev
	}

	add(attendance.EventBreakStart, 7*time.Hour)
	add(attendance.EventBreakEnd, 7*time.Hour+15*time.Minute)
	in := add(attendance.EventClockIn, 9*time.Hour)
	add(attendance.EventBreakEnd, 10*time.Hour)
	add(attendance.EventBreakStart, 12*time.Hour)
	add(attendance.EventBreakEnd, 12*time.Hour+45*time.Minute)
	out := add(attendance.EventClockOut, 17*time.Hour)

	ts, err := agg.CloseSession(ctx, in, out, out.CapturedAt)
	require.NoError(t, err)
	assert.Equal(t, 45, ts.BreakMinutes)
	assert.InDelta(t, 8.0, ts.HoursWorked, 0.0001)
	assert.Equal(t, day, ts.Date)
}
