package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/metrics"
)

type AttendanceJobs struct {
	eventRepo  attendance.EventRepository
	staleAfter time.Duration
	now        func() time.Time
}

func NewAttendanceJobs(eventRepo attendance.EventRepository, staleAfter time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		eventRepo:  eventRepo,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("report_stale_open_sessions", 15*time.Minute, j.ReportStaleOpenSessions, WithTimeout(time.Minute))
}

// ReportStaleOpenSessions logs sessions left open past the threshold and
// exports their count. Sessions are never closed automatically; an employer
// closes them with a manual clock-out.
func (j *AttendanceJobs) ReportStaleOpenSessions(ctx context.Context) error {
	cutoff := j.now().Add(-j.staleAfter)

	sessions, err := j.eventRepo.ListOpenSessions(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}

	metrics.SetStaleOpenSessions(len(sessions))

	for _, clockIn := range sessions {
		slog.Warn("Cron: Stale open session",
			"company_id", clockIn.CompanyID,
			"employee_id", clockIn.EmployeeID,
			"clock_in_id", clockIn.ID,
			"open_for", j.now().Sub(clockIn.CapturedAt).Round(time.Minute).String())
	}

	if len(sessions) > 0 {
		slog.Info("Cron: Stale open sessions found", "count", len(sessions))
	}
	return nil
}
