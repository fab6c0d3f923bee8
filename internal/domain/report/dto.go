package report

import (
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

// ========================================
// TIMESHEET LIST
// ========================================

type TimesheetFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *TimesheetFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	errs = append(errs, validateRange(f.StartDate, f.EndDate)...)
	errs = append(errs, validateEmployeeID(f.EmployeeID)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListTimesheetResponse struct {
	TotalCount int64                          `json:"total_count"`
	Page       int                            `json:"page"`
	Limit      int                            `json:"limit"`
	TotalPages int                            `json:"total_pages"`
	Showing    string                         `json:"showing"`
	Timesheets []attendance.TimesheetResponse `json:"timesheets"`
}

// ========================================
// TIMESHEET SUMMARY
// ========================================

type SummaryRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *SummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	}
	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	}
	if len(errs) == 0 {
		errs = append(errs, validateRange(&r.StartDate, &r.EndDate)...)
	}
	errs = append(errs, validateEmployeeID(r.EmployeeID)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the parsed inclusive date range. Call after Validate.
func (r *SummaryRequest) Period() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type SummaryRow struct {
	EmployeeID        string  `json:"employee_id"`
	EmployeeCode      string  `json:"employee_code"`
	EmployeeName      string  `json:"employee_name"`
	DaysWorked        int     `json:"days_worked"`
	TotalHours        float64 `json:"total_hours"`
	TotalBreakMinutes int     `json:"total_break_minutes"`
}

type TimesheetSummaryReport struct {
	PeriodStart    string       `json:"period_start"`
	PeriodEnd      string       `json:"period_end"`
	GeneratedAt    string       `json:"generated_at"`
	TotalHours     float64      `json:"total_hours"`
	TotalEmployees int          `json:"total_employees"`
	Rows           []SummaryRow `json:"rows"`
}

// ========================================
// TODAY OVERVIEW
// ========================================

type StateCounts struct {
	ClockedIn int
	OnBreak   int
}

type TodayOverview struct {
	Date            string                     `json:"date"`
	ActiveEmployees int                        `json:"active_employees"`
	ClockedIn       int                        `json:"clocked_in"`
	OnBreak         int                        `json:"on_break"`
	EventsToday     int                        `json:"events_today"`
	HoursToday      float64                    `json:"hours_today"`
	RecentEvents    []attendance.EventResponse `json:"recent_events"`
}

func validateEmployeeID(employeeID *string) validator.ValidationErrors {
	if employeeID == nil || *employeeID == "" || validator.IsValidUUID(*employeeID) {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   "employee_id",
		Message: "employee_id must be a valid UUID",
	}}
}

func validateRange(startDate, endDate *string) validator.ValidationErrors {
	var (
		errs       validator.ValidationErrors
		start, end time.Time
		hasStart   bool
		hasEnd     bool
	)

	if startDate != nil && *startDate != "" {
		var valid bool
		if start, valid = validator.IsValidDate(*startDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		hasStart = valid
	}

	if endDate != nil && *endDate != "" {
		var valid bool
		if end, valid = validator.IsValidDate(*endDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		hasEnd = valid
	}

	if hasStart && hasEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	return errs
}
