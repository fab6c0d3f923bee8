package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/report"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ListTimesheets implements report.ReportRepository.
func (r *reportRepositoryImpl) ListTimesheets(ctx context.Context, filter report.TimesheetFilter, companyID string) ([]attendance.Timesheet, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "t.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND t.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM timesheets t WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count timesheets: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name, e.employee_code
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		WHERE %s
		ORDER BY t.date DESC, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, timesheetColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	var timesheets []attendance.Timesheet
	for rows.Next() {
		var name, code string
		ts, err := scanTimesheet(rows, &name, &code)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		ts.EmployeeName = &name
		ts.EmployeeCode = &code
		timesheets = append(timesheets, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating timesheet rows: %w", err)
	}

	return timesheets, total, nil
}

// SummarizeTimesheets implements report.ReportRepository.
func (r *reportRepositoryImpl) SummarizeTimesheets(ctx context.Context, companyID string, start, end time.Time, employeeID *string) ([]report.SummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id,
			e.employee_code,
			e.full_name,
			COUNT(t.id) AS days_worked,
			COALESCE(SUM(t.hours_worked), 0) AS total_hours,
			COALESCE(SUM(t.break_minutes), 0) AS total_break_minutes
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.company_id = $1
		  AND t.date >= $2::date
		  AND t.date <= $3::date
		  AND ($4::uuid IS NULL OR t.employee_id = $4::uuid)
		GROUP BY e.id, e.employee_code, e.full_name
		ORDER BY e.full_name ASC
	`

	rows, err := q.Query(ctx, query, companyID, start.Format("2006-01-02"), end.Format("2006-01-02"), employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheet summary: %w", err)
	}
	defer rows.Close()

	var result []report.SummaryRow
	for rows.Next() {
		var row report.SummaryRow
		if err := rows.Scan(
			&row.EmployeeID,
			&row.EmployeeCode,
			&row.EmployeeName,
			&row.DaysWorked,
			&row.TotalHours,
			&row.TotalBreakMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet summary: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timesheet summary rows: %w", err)
	}

	return result, nil
}

// CountActiveEmployees implements report.ReportRepository.
func (r *reportRepositoryImpl) CountActiveEmployees(ctx context.Context, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE company_id = $1 AND is_active`, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return count, nil
}

// CountOpenStates implements report.ReportRepository.
func (r *reportRepositoryImpl) CountOpenStates(ctx context.Context, companyID string) (report.StateCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH latest_clock AS (
			SELECT DISTINCT ON (employee_id) employee_id, event_type, captured_at
			FROM attendance_events
			WHERE company_id = $1 AND event_type IN ('CLOCK_IN', 'CLOCK_OUT')
			ORDER BY employee_id, captured_at DESC, id DESC
		),
		latest_break AS (
			SELECT DISTINCT ON (ev.employee_id) ev.employee_id, ev.event_type
			FROM attendance_events ev
			JOIN latest_clock lc ON lc.employee_id = ev.employee_id AND lc.event_type = 'CLOCK_IN'
			WHERE ev.company_id = $1
			  AND ev.event_type IN ('BREAK_START', 'BREAK_END')
			  AND ev.captured_at >= lc.captured_at
			ORDER BY ev.employee_id, ev.captured_at DESC, ev.id DESC
		)
		SELECT
			COUNT(*) FILTER (WHERE lc.event_type = 'CLOCK_IN' AND lb.event_type IS DISTINCT FROM 'BREAK_START'),
			COUNT(*) FILTER (WHERE lc.event_type = 'CLOCK_IN' AND lb.event_type = 'BREAK_START')
		FROM latest_clock lc
		LEFT JOIN latest_break lb ON lb.employee_id = lc.employee_id
	`

	var counts report.StateCounts
	if err := q.QueryRow(ctx, query, companyID).Scan(&counts.ClockedIn, &counts.OnBreak); err != nil {
		return report.StateCounts{}, fmt.Errorf("failed to count open states: %w", err)
	}
	return counts, nil
}

// CountEventsSince implements report.ReportRepository.
func (r *reportRepositoryImpl) CountEventsSince(ctx context.Context, companyID string, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_events WHERE company_id = $1 AND captured_at >= $2`, companyID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// SumHoursForDate implements report.ReportRepository.
func (r *reportRepositoryImpl) SumHoursForDate(ctx context.Context, companyID string, date time.Time) (float64, error) {
	q := GetQuerier(ctx, r.db)

	var hours float64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(hours_worked), 0) FROM timesheets WHERE company_id = $1 AND date = $2::date`,
		companyID, date.Format("2006-01-02"),
	).Scan(&hours)
	if err != nil {
		return 0, fmt.Errorf("failed to sum hours: %w", err)
	}
	return hours, nil
}

// RecentEvents implements report.ReportRepository.
func (r *reportRepositoryImpl) RecentEvents(ctx context.Context, companyID string, limit int) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `, e.full_name
		FROM attendance_events ev
		JOIN employees e ON e.id = ev.employee_id
		WHERE ev.company_id = $1
		ORDER BY ev.captured_at DESC, ev.id DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		var name string
		ev, err := scanEvent(rows, &name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent event: %w", err)
		}
		ev.EmployeeName = &name
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent event rows: %w", err)
	}

	return events, nil
}
