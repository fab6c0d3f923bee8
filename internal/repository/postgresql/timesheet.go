package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
)

const timesheetColumns = `
	t.id, t.employee_id, t.company_id, t.date, t.clock_in_id, t.clock_out_id, t.clock_out_at,
	t.hours_worked, t.break_minutes, t.notes, t.created_at, t.updated_at`

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) attendance.TimesheetRepository {
	return &timesheetRepository{db: db}
}

func scanTimesheet(row pgx.Row, extra ...any) (attendance.Timesheet, error) {
	var ts attendance.Timesheet
	dest := []any{
		&ts.ID, &ts.EmployeeID, &ts.CompanyID, &ts.Date, &ts.ClockInID, &ts.ClockOutID, &ts.ClockOutAt,
		&ts.HoursWorked, &ts.BreakMinutes, &ts.Notes, &ts.CreatedAt, &ts.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return ts, err
}

// Upsert implements attendance.TimesheetRepository. When the stored row has a
// later clock-out the write is skipped and the stored row is returned.
func (r *timesheetRepository) Upsert(ctx context.Context, ts attendance.Timesheet) (attendance.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	if ts.ID == "" {
		ts.ID = uuid.New().String()
	}

	query := `
		INSERT INTO timesheets AS t (
			id, employee_id, company_id, date, clock_in_id, clock_out_id, clock_out_at,
			hours_worked, break_minutes, notes
		) VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (employee_id, company_id, date) DO UPDATE SET
			clock_in_id   = EXCLUDED.clock_in_id,
			clock_out_id  = EXCLUDED.clock_out_id,
			clock_out_at  = EXCLUDED.clock_out_at,
			hours_worked  = EXCLUDED.hours_worked,
			break_minutes = EXCLUDED.break_minutes,
			notes         = COALESCE(EXCLUDED.notes, t.notes),
			updated_at    = NOW()
		WHERE t.clock_out_at <= EXCLUDED.clock_out_at
		RETURNING ` + timesheetColumns

	stored, err := scanTimesheet(q.QueryRow(ctx, query,
		ts.ID,
		ts.EmployeeID,
		ts.CompanyID,
		ts.Date.Format("2006-01-02"),
		ts.ClockInID,
		ts.ClockOutID,
		ts.ClockOutAt,
		ts.HoursWorked,
		ts.BreakMinutes,
		ts.Notes,
	))
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Timesheet{}, fmt.Errorf("failed to upsert timesheet: %w", err)
	}

	existing, err := r.GetByEmployeeAndDate(ctx, ts.EmployeeID, ts.CompanyID, ts.Date)
	if err != nil {
		return attendance.Timesheet{}, err
	}
	if existing == nil {
		return attendance.Timesheet{}, attendance.ErrTimesheetNotFound
	}
	return *existing, nil
}

// GetByEmployeeAndDate implements attendance.TimesheetRepository.
func (r *timesheetRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, companyID string, date time.Time) (*attendance.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets t
		WHERE t.employee_id = $1 AND t.company_id = $2 AND t.date = $3::date
	`

	ts, err := scanTimesheet(q.QueryRow(ctx, query, employeeID, companyID, date.Format("2006-01-02")))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}

	return &ts, nil
}
