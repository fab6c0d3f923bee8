package attendance

import (
	"time"
)

type EventType string

const (
	EventClockIn    EventType = "CLOCK_IN"
	EventClockOut   EventType = "CLOCK_OUT"
	EventBreakStart EventType = "BREAK_START"
	EventBreakEnd   EventType = "BREAK_END"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventClockIn, EventClockOut, EventBreakStart, EventBreakEnd:
		return true
	}
	return false
}

// IsBreak reports whether t is BREAK_START or BREAK_END.
func (t EventType) IsBreak() bool {
	return t == EventBreakStart || t == EventBreakEnd
}

// Event is an immutable attendance fact. Events of one employee are ordered by
// CapturedAt, ties broken by ID (ULIDs sort by creation time).
type Event struct {
	ID             string
	EmployeeID     string
	CompanyID      string
	EventType      EventType
	CapturedAt     time.Time
	LocationLat    float64
	LocationLng    float64
	AccuracyMeters float64
	Address        *string
	CardID         *string
	DeviceInfo     *string
	Notes          *string
	CreatedAt      time.Time

	// DTO
	EmployeeName *string
}

// Before reports whether e is ordered before other.
func (e Event) Before(other Event) bool {
	if !e.CapturedAt.Equal(other.CapturedAt) {
		return e.CapturedAt.Before(other.CapturedAt)
	}
	return e.ID < other.ID
}

type Timesheet struct {
	ID           string
	EmployeeID   string
	CompanyID    string
	Date         time.Time
	ClockInID    string
	ClockOutID   string
	ClockOutAt   time.Time
	HoursWorked  float64
	BreakMinutes int
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
}

// Location is the coordinate set copied onto an event.
type Location struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Address        *string
}
