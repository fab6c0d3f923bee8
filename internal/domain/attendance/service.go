package attendance

import (
	"context"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
)

// AttendanceService runs taps and employer overrides through the state machine.
// Rejections come back inside the result; the error channel is for system failures.
type AttendanceService interface {
	// Tap handles an NFC tap or manual code entry
	Tap(ctx context.Context, actor user.Actor, req TapRequest) (TapResult, error)

	// PutOnBreak starts a break on behalf of an employee
	PutOnBreak(ctx context.Context, actor user.Actor, req OverrideRequest) (OverrideResult, error)

	// EndBreak ends the employee's open break
	EndBreak(ctx context.Context, actor user.Actor, req OverrideRequest) (OverrideResult, error)

	// ClockOutEmployee closes the employee's open session and recomputes the timesheet
	ClockOutEmployee(ctx context.Context, actor user.Actor, req OverrideRequest) (OverrideResult, error)

	// GetState returns the derived state of one employee
	GetState(ctx context.Context, actor user.Actor, employeeID string) (DayStateResponse, error)

	// ListEvents lists raw attendance events of the actor's company
	ListEvents(ctx context.Context, actor user.Actor, filter EventFilter) (ListEventsResponse, error)
}
