package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func insertEvent(t *testing.T, repo attendance.EventRepository, companyID, employeeID string, eventType attendance.EventType, at time.Time) attendance.Event {
	t.Helper()

	ev, err := repo.Insert(context.Background(), attendance.Event{
		EmployeeID:     employeeID,
		CompanyID:      companyID,
		EventType:      eventType,
		CapturedAt:     at,
		LocationLat:    -33.86,
		LocationLng:    151.2,
		AccuracyMeters: 12,
	})
	require.NoError(t, err)
	return ev
}

func TestAttendanceEventRepository_MostRecent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-001", "Dana Reyes")
	repo := postgresql.NewAttendanceEventRepository(db)

	none, err := repo.FindMostRecent(ctx, emp.ID, companyID)
	require.NoError(t, err)
	assert.Nil(t, none)

	insertEvent(t, repo, companyID, emp.ID, attendance.EventClockIn, base)
	insertEvent(t, repo, companyID, emp.ID, attendance.EventBreakStart, base.Add(2*time.Hour))

	latest, err := repo.FindMostRecent(ctx, emp.ID, companyID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, attendance.EventBreakStart, latest.EventType)

	clockIn, err := repo.FindMostRecentByType(ctx, emp.ID, companyID, attendance.EventClockIn)
	require.NoError(t, err)
	require.NotNil(t, clockIn)
	assert.True(t, clockIn.CapturedAt.Equal(base))

	// Another company never sees the employee's events
	other := seedCompany(t, db, "Other")
	foreign, err := repo.FindMostRecent(ctx, emp.ID, other)
	require.NoError(t, err)
	assert.Nil(t, foreign)
}

func TestAttendanceEventRepository_ListUsesLocalDayBounds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-001", "Dana Reyes")
	repo := postgresql.NewAttendanceEventRepository(db)
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// 08:00 on the 3rd in Sydney
	early := insertEvent(t, repo, companyID, emp.ID, attendance.EventClockIn, time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC))
	// 23:30 on the 3rd in Sydney
	insertEvent(t, repo, companyID, emp.ID, attendance.EventClockOut, time.Date(2026, 3, 3, 12, 30, 0, 0, time.UTC))
	// 00:30 on the 4th in Sydney
	insertEvent(t, repo, companyID, emp.ID, attendance.EventClockIn, time.Date(2026, 3, 3, 13, 30, 0, 0, time.UTC))

	day := "2026-03-03"
	filter := attendance.EventFilter{StartDate: &day, EndDate: &day, Page: 1, Limit: 50}
	filter.ResolveRange(sydney)

	events, total, err := repo.List(ctx, filter, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, events, 2)
	assert.Equal(t, early.ID, events[1].ID)
	assert.Equal(t, attendance.DayBucket(early.CapturedAt, sydney).Format("2006-01-02"), day)
}

func TestAttendanceEventRepository_ListOpenSessions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companyID := seedCompany(t, db, "Acme")
	open := seedEmployee(t, db, companyID, "EMP-001", "Open Session")
	closed := seedEmployee(t, db, companyID, "EMP-002", "Closed Session")
	recent := seedEmployee(t, db, companyID, "EMP-003", "Recent Session")
	repo := postgresql.NewAttendanceEventRepository(db)

	insertEvent(t, repo, companyID, open.ID, attendance.EventClockIn, base)
	insertEvent(t, repo, companyID, open.ID, attendance.EventBreakStart, base.Add(time.Hour))

	insertEvent(t, repo, companyID, closed.ID, attendance.EventClockIn, base)
	insertEvent(t, repo, companyID, closed.ID, attendance.EventClockOut, base.Add(8*time.Hour))

	insertEvent(t, repo, companyID, recent.ID, attendance.EventClockIn, base.Add(20*time.Hour))

	sessions, err := repo.ListOpenSessions(ctx, base.Add(16*time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, open.ID, sessions[0].EmployeeID)
	assert.Equal(t, attendance.EventClockIn, sessions[0].EventType)
}

func TestTimesheetRepository_UpsertIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-001", "Dana Reyes")
	events := postgresql.NewAttendanceEventRepository(db)
	repo := postgresql.NewTimesheetRepository(db)

	in := insertEvent(t, events, companyID, emp.ID, attendance.EventClockIn, base)
	firstOut := insertEvent(t, events, companyID, emp.ID, attendance.EventClockOut, base.Add(4*time.Hour))
	in2 := insertEvent(t, events, companyID, emp.ID, attendance.EventClockIn, base.Add(5*time.Hour))
	secondOut := insertEvent(t, events, companyID, emp.ID, attendance.EventClockOut, base.Add(8*time.Hour))
	day := attendance.DayBucket(base, time.UTC)

	first, err := repo.Upsert(ctx, attendance.Timesheet{
		EmployeeID: emp.ID, CompanyID: companyID, Date: day,
		ClockInID: in.ID, ClockOutID: firstOut.ID, ClockOutAt: firstOut.CapturedAt,
		HoursWorked: 4,
	})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, attendance.Timesheet{
		EmployeeID: emp.ID, CompanyID: companyID, Date: day,
		ClockInID: in2.ID, ClockOutID: secondOut.ID, ClockOutAt: secondOut.CapturedAt,
		HoursWorked: 3, BreakMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, secondOut.ID, second.ClockOutID)

	// A late recompute of the earlier session leaves the newer row in place
	stale, err := repo.Upsert(ctx, attendance.Timesheet{
		EmployeeID: emp.ID, CompanyID: companyID, Date: day,
		ClockInID: in.ID, ClockOutID: firstOut.ID, ClockOutAt: firstOut.CapturedAt,
		HoursWorked: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, secondOut.ID, stale.ClockOutID)
	assert.Equal(t, 3.0, stale.HoursWorked)
	assert.Equal(t, 15, stale.BreakMinutes)

	stored, err := repo.GetByEmployeeAndDate(ctx, emp.ID, companyID, day)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, secondOut.ID, stored.ClockOutID)
}

func TestTransitionLocker_Serializes(t *testing.T) {
	db := newTestDB(t)
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-001", "Dana Reyes")
	locker := postgresql.NewTransitionLocker(db)

	var (
		wg      sync.WaitGroup
		inside  int32
		overlap int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithEmployeeLock(context.Background(), companyID, emp.ID, func(ctx context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap))
}

func TestTransitionLocker_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-001", "Dana Reyes")
	locker := postgresql.NewTransitionLocker(db)
	events := postgresql.NewAttendanceEventRepository(db)
	boom := errors.New("boom")

	err := locker.WithEmployeeLock(context.Background(), companyID, emp.ID, func(ctx context.Context) error {
		insertEventCtx(t, ctx, events, companyID, emp.ID)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	latest, err := events.FindMostRecent(context.Background(), emp.ID, companyID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestWithTransaction_NestedCallJoinsOuter(t *testing.T) {
	db := newTestDB(t)
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-001", "Dana Reyes")
	events := postgresql.NewAttendanceEventRepository(db)
	boom := errors.New("boom")

	err := postgresql.WithTransaction(context.Background(), db, func(ctx context.Context) error {
		inner := postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
			insertEventCtx(t, ctx, events, companyID, emp.ID)
			return nil
		})
		require.NoError(t, inner)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The inner call did not commit on its own
	latest, err := events.FindMostRecent(context.Background(), emp.ID, companyID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func insertEventCtx(t *testing.T, ctx context.Context, repo attendance.EventRepository, companyID, employeeID string) {
	t.Helper()

	_, err := repo.Insert(ctx, attendance.Event{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		EventType:  attendance.EventClockIn,
		CapturedAt: base,
	})
	require.NoError(t, err)
}
