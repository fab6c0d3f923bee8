package attendance

import "errors"

type RejectionKind string

const (
	RejectionValidation    RejectionKind = "VALIDATION_ERROR"
	RejectionStateConflict RejectionKind = "STATE_CONFLICT"
	RejectionNotFound      RejectionKind = "NOT_FOUND"
)

// Rejection is an expected, user-facing refusal of a tap or override. It is
// returned as a value in results; the Reason text is shown to users verbatim.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func newRejection(kind RejectionKind, reason string) *Rejection {
	return &Rejection{Kind: kind, Reason: reason}
}

// State conflicts
var (
	ErrNoActiveClockIn      = newRejection(RejectionStateConflict, "No active clock in found. Please clock in first.")
	ErrClockInTooSoon       = newRejection(RejectionStateConflict, "Please wait before clocking in again")
	ErrAlreadyClockedIn     = newRejection(RejectionStateConflict, "Already clocked in. Please clock out first.")
	ErrAlreadyOnBreak       = newRejection(RejectionStateConflict, "Employee is already on break.")
	ErrNotOnBreak           = newRejection(RejectionStateConflict, "Employee is not currently on break.")
	ErrBreakAlreadyEnded    = newRejection(RejectionStateConflict, "Break has already been ended.")
	ErrMustBeClockedInBreak = newRejection(RejectionStateConflict, "Employee must be clocked in to go on break.")
	ErrAlreadyClockedOut    = newRejection(RejectionStateConflict, "Employee is already clocked out.")
	ErrNotClockedIn         = newRejection(RejectionStateConflict, "Employee is not currently clocked in.")
)

// Validation
var (
	ErrInvalidEventType = newRejection(RejectionValidation, "invalid event type")
)

// Not found
var (
	ErrEmployeeNotFoundOrInactive = newRejection(RejectionNotFound, "Employee not found or inactive")
	ErrEmployeeNotInCompany       = newRejection(RejectionNotFound, "Employee not found or does not belong to your company.")
)

var (
	ErrEventNotFound     = errors.New("attendance event not found")
	ErrTimesheetNotFound = errors.New("timesheet not found")
)

// AsRejection unwraps err into a Rejection when it is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
