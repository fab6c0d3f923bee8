package attendance

type OverrideAction string

const (
	OverridePutOnBreak OverrideAction = "PUT_ON_BREAK"
	OverrideEndBreak   OverrideAction = "END_BREAK"
	OverrideClockOut   OverrideAction = "CLOCK_OUT"
)

// ResolveOverride re-validates an employer action against the derived state
// instead of trusting the caller.
func ResolveOverride(action OverrideAction, ds DayState) (EventType, error) {
	switch action {
	case OverridePutOnBreak:
		switch ds.State {
		case StateClockedOut:
			return "", ErrMustBeClockedInBreak
		case StateOnBreak:
			return "", ErrAlreadyOnBreak
		}
		return EventBreakStart, nil

	case OverrideEndBreak:
		if ds.State == StateOnBreak {
			return EventBreakEnd, nil
		}
		if ds.State == StateClockedIn && ds.LastBreak != nil && ds.LastBreak.EventType == EventBreakEnd {
			return "", ErrBreakAlreadyEnded
		}
		return "", ErrNotOnBreak

	case OverrideClockOut:
		if ds.ClockIn != nil {
			return EventClockOut, nil
		}
		if ds.LastClockOut != nil {
			return "", ErrAlreadyClockedOut
		}
		return "", ErrNotClockedIn
	}

	return "", ErrInvalidEventType
}

// SuccessMessage is the confirmation shown after an accepted override.
func (a OverrideAction) SuccessMessage(employeeName string) string {
	switch a {
	case OverridePutOnBreak:
		return employeeName + " is now on break."
	case OverrideEndBreak:
		return employeeName + " is back from break."
	case OverrideClockOut:
		return employeeName + " has been clocked out."
	}
	return ""
}
