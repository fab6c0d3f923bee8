package attendance

import (
	"math"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

// ========================================
// TAP DTOs
// ========================================

type TapRequest struct {
	Credential         string   `json:"credential"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	AccuracyMeters     *float64 `json:"accuracy_meters"`
	Address            *string  `json:"address,omitempty"`
	DeviceInfo         *string  `json:"device_info,omitempty"`
	RequestedEventType *string  `json:"requested_event_type,omitempty"`
}

func (r *TapRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Credential) {
		errs = append(errs, validator.ValidationError{
			Field:   "credential",
			Message: "credential is required",
		})
	}

	if r.Latitude == nil || math.IsNaN(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if *r.Latitude < -90 || *r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil || math.IsNaN(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if *r.Longitude < -180 || *r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.AccuracyMeters == nil || math.IsNaN(*r.AccuracyMeters) {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy_meters",
			Message: "accuracy_meters is required",
		})
	} else if *r.AccuracyMeters < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy_meters",
			Message: "accuracy_meters must not be negative",
		})
	}

	if r.RequestedEventType != nil && *r.RequestedEventType != "" {
		validTypes := []string{string(EventClockIn), string(EventClockOut)}
		if !validator.IsInSlice(strings.ToUpper(*r.RequestedEventType), validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_event_type",
				Message: "requested_event_type must be one of: CLOCK_IN, CLOCK_OUT",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RequestedType returns the explicit event type, nil in auto-detect mode.
func (r *TapRequest) RequestedType() *EventType {
	if r.RequestedEventType == nil || *r.RequestedEventType == "" {
		return nil
	}
	t := EventType(strings.ToUpper(*r.RequestedEventType))
	return &t
}

func (r *TapRequest) Location() Location {
	loc := Location{Address: r.Address}
	if r.Latitude != nil {
		loc.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		loc.Longitude = *r.Longitude
	}
	if r.AccuracyMeters != nil {
		loc.AccuracyMeters = *r.AccuracyMeters
	}
	return loc
}

type TapResult struct {
	Accepted     bool               `json:"accepted"`
	EventType    *EventType         `json:"event_type,omitempty"`
	EmployeeName string             `json:"employee_name,omitempty"`
	Reason       string             `json:"reason,omitempty"`
	Code         RejectionKind      `json:"code,omitempty"`
	Details      map[string]string  `json:"details,omitempty"`
	Event        *EventResponse     `json:"event,omitempty"`
	Timesheet    *TimesheetResponse `json:"timesheet,omitempty"`
}

// ========================================
// MANUAL OVERRIDE DTOs
// ========================================

type OverrideRequest struct {
	EmployeeID string  `json:"-"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OverrideResult struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message,omitempty"`
	Error     string             `json:"error,omitempty"`
	Code      RejectionKind      `json:"code,omitempty"`
	Event     *EventResponse     `json:"event,omitempty"`
	Timesheet *TimesheetResponse `json:"timesheet,omitempty"`
}

// ========================================
// READ DTOs
// ========================================

type EventResponse struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employee_id"`
	EmployeeName   *string  `json:"employee_name,omitempty"`
	EventType      string   `json:"event_type"`
	CapturedAt     string   `json:"captured_at"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters float64  `json:"accuracy_meters"`
	Address        *string  `json:"address,omitempty"`
	CardID         *string  `json:"card_id,omitempty"`
	DeviceInfo     *string  `json:"device_info,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

type TimesheetResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Date         string  `json:"date"`
	ClockInID    string  `json:"clock_in_id"`
	ClockOutID   string  `json:"clock_out_id"`
	HoursWorked  float64 `json:"hours_worked"`
	BreakMinutes int     `json:"break_minutes"`
	Notes        *string `json:"notes,omitempty"`
	UpdatedAt    string  `json:"updated_at"`
}

type DayStateResponse struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	State         State   `json:"state"`
	Since         *string `json:"since,omitempty"`
	ClockInAt     *string `json:"clock_in_at,omitempty"`
	LastEventType *string `json:"last_event_type,omitempty"`
	CanClockIn    bool    `json:"can_clock_in"`
	CanClockOut   bool    `json:"can_clock_out"`
	CanStartBreak bool    `json:"can_start_break"`
	CanEndBreak   bool    `json:"can_end_break"`
}

type EventFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	EventType  *string `json:"event_type,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Instants bounding captured_at, set by ResolveRange
	CapturedFrom   *time.Time `json:"-"`
	CapturedBefore *time.Time `json:"-"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EventFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

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
		f.Limit = 50 // Default limit
	}
	if f.Limit > 200 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 200",
		})
	}

	if f.EventType != nil && *f.EventType != "" {
		if !EventType(strings.ToUpper(*f.EventType)).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "event_type",
				Message: "event_type must be one of: CLOCK_IN, CLOCK_OUT, BREAK_START, BREAK_END",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResolveRange turns StartDate and EndDate into captured_at bounds covering
// whole local days in loc. Call after Validate.
func (f *EventFilter) ResolveRange(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	if f.StartDate != nil && *f.StartDate != "" {
		if d, ok := validator.IsValidDate(*f.StartDate); ok {
			from := localMidnight(d, loc)
			f.CapturedFrom = &from
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if d, ok := validator.IsValidDate(*f.EndDate); ok {
			before := localMidnight(d, loc).AddDate(0, 0, 1)
			f.CapturedBefore = &before
		}
	}
}

func localMidnight(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

type ListEventsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Events     []EventResponse `json:"events"`
}
