package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/report"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	attendanceservice "github.com/mrjaketay/timeApp-sub000/internal/service/attendance"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const recentEventsLimit = 10

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	loc        *time.Location
	now        func() time.Time
}

func NewReportService(reportRepo report.ReportRepository, loc *time.Location) report.ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		loc:        loc,
		now:        time.Now,
	}
}

func requireReports(actor user.Actor) error {
	if actor.CompanyID == "" {
		return user.ErrCompanyIDRequired
	}
	if !actor.Can(user.PermissionReportsView) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

// ListTimesheets implements report.ReportService.
func (s *ReportServiceImpl) ListTimesheets(ctx context.Context, actor user.Actor, filter report.TimesheetFilter) (report.ListTimesheetResponse, error) {
	if err := requireReports(actor); err != nil {
		return report.ListTimesheetResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return report.ListTimesheetResponse{}, err
	}

	timesheets, total, err := s.reportRepo.ListTimesheets(ctx, filter, actor.CompanyID)
	if err != nil {
		return report.ListTimesheetResponse{}, fmt.Errorf("failed to list timesheets: %w", err)
	}

	responses := make([]attendance.TimesheetResponse, 0, len(timesheets))
	for _, ts := range timesheets {
		responses = append(responses, attendanceservice.MapTimesheetToResponse(ts))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return report.ListTimesheetResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Timesheets: responses,
	}, nil
}

// SummarizeTimesheets implements report.ReportService.
func (s *ReportServiceImpl) SummarizeTimesheets(ctx context.Context, actor user.Actor, req report.SummaryRequest) (report.TimesheetSummaryReport, error) {
	if err := requireReports(actor); err != nil {
		return report.TimesheetSummaryReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.TimesheetSummaryReport{}, err
	}

	start, end := req.Period()
	rows, err := s.reportRepo.SummarizeTimesheets(ctx, actor.CompanyID, start, end, req.EmployeeID)
	if err != nil {
		return report.TimesheetSummaryReport{}, fmt.Errorf("failed to summarize timesheets: %w", err)
	}

	totalHours := decimal.Zero
	for i := range rows {
		rows[i].TotalHours = roundHours(rows[i].TotalHours)
		totalHours = totalHours.Add(decimal.NewFromFloat(rows[i].TotalHours))
	}
	if rows == nil {
		rows = []report.SummaryRow{}
	}

	return report.TimesheetSummaryReport{
		PeriodStart:    req.StartDate,
		PeriodEnd:      req.EndDate,
		GeneratedAt:    s.now().In(s.loc).Format(time.RFC3339),
		TotalHours:     totalHours.Round(2).InexactFloat64(),
		TotalEmployees: len(rows),
		Rows:           rows,
	}, nil
}

// TodayOverview implements report.ReportService.
func (s *ReportServiceImpl) TodayOverview(ctx context.Context, actor user.Actor) (report.TodayOverview, error) {
	if err := requireReports(actor); err != nil {
		return report.TodayOverview{}, err
	}

	today := attendance.DayBucket(s.now(), s.loc)
	overview := report.TodayOverview{
		Date: today.Format("2006-01-02"),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.reportRepo.CountActiveEmployees(gCtx, actor.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to count active employees: %w", err)
		}
		overview.ActiveEmployees = n
		return nil
	})

	g.Go(func() error {
		counts, err := s.reportRepo.CountOpenStates(gCtx, actor.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to count open states: %w", err)
		}
		overview.ClockedIn = counts.ClockedIn
		overview.OnBreak = counts.OnBreak
		return nil
	})

	g.Go(func() error {
		n, err := s.reportRepo.CountEventsSince(gCtx, actor.CompanyID, today)
		if err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}
		overview.EventsToday = n
		return nil
	})

	g.Go(func() error {
		hours, err := s.reportRepo.SumHoursForDate(gCtx, actor.CompanyID, today)
		if err != nil {
			return fmt.Errorf("failed to sum hours: %w", err)
		}
		overview.HoursToday = roundHours(hours)
		return nil
	})

	g.Go(func() error {
		events, err := s.reportRepo.RecentEvents(gCtx, actor.CompanyID, recentEventsLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent events: %w", err)
		}
		recent := make([]attendance.EventResponse, 0, len(events))
		for _, ev := range events {
			recent = append(recent, attendanceservice.MapEventToResponse(ev))
		}
		overview.RecentEvents = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.TodayOverview{}, err
	}

	return overview, nil
}

// roundHours rounds to two decimals, half away from zero.
func roundHours(h float64) float64 {
	return decimal.NewFromFloat(h).Round(2).InexactFloat64()
}
