package attendance

import (
	"sort"
	"time"
)

// DebounceWindow is the minimum gap between two clock-in intents of one employee.
const DebounceWindow = 5 * time.Minute

type State string

const (
	StateClockedOut State = "CLOCKED_OUT"
	StateClockedIn  State = "CLOCKED_IN"
	StateOnBreak    State = "ON_BREAK"
)

// DayState is the state implied by an employee's event history. It is never
// persisted.
type DayState struct {
	State State
	// Since is the capture time of LastEvent, zero when there is no history.
	Since     time.Time
	LastEvent *Event

	// ClockIn is the CLOCK_IN that opened the current session, nil when clocked out.
	ClockIn      *Event
	LastClockOut *Event
	// LastBreak is the latest break event inside the open session.
	LastBreak *Event
}

// SortEvents returns a copy of events in capture order.
func SortEvents(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})
	return sorted
}

// DeriveState folds the event sequence into a DayState. The input does not need
// to be sorted. Break events outside an open session are ignored.
func DeriveState(events []Event) DayState {
	ds := DayState{State: StateClockedOut}

	for _, ev := range SortEvents(events) {
		ev := ev
		switch ev.EventType {
		case EventClockIn:
			ds.State = StateClockedIn
			ds.ClockIn = &ev
			ds.LastBreak = nil
		case EventClockOut:
			ds.State = StateClockedOut
			ds.ClockIn = nil
			ds.LastBreak = nil
			ds.LastClockOut = &ev
		case EventBreakStart:
			if ds.ClockIn == nil {
				continue
			}
			ds.State = StateOnBreak
			ds.LastBreak = &ev
		case EventBreakEnd:
			if ds.ClockIn == nil {
				continue
			}
			ds.State = StateClockedIn
			ds.LastBreak = &ev
		default:
			continue
		}
		ds.LastEvent = &ev
		ds.Since = ev.CapturedAt
	}

	return ds
}

// inDebounce reports whether now is still inside the debounce window of the
// open session's clock-in.
func (ds DayState) inDebounce(now time.Time) bool {
	if ds.ClockIn == nil {
		return false
	}
	return now.Sub(ds.ClockIn.CapturedAt) < DebounceWindow
}

// ResolveIntent decides which event a request produces. A nil requested type is
// auto-detect mode: clocked out means CLOCK_IN, clocked in (or on break) past the
// debounce window means CLOCK_OUT.
func ResolveIntent(ds DayState, requested *EventType, now time.Time) (EventType, error) {
	if requested == nil {
		if ds.State == StateClockedOut {
			return EventClockIn, nil
		}
		if ds.inDebounce(now) {
			return "", ErrClockInTooSoon
		}
		return EventClockOut, nil
	}

	switch *requested {
	case EventClockIn:
		if ds.State == StateClockedOut {
			return EventClockIn, nil
		}
		if ds.inDebounce(now) {
			return "", ErrClockInTooSoon
		}
		return "", ErrAlreadyClockedIn
	case EventClockOut:
		if ds.State == StateClockedOut {
			return "", ErrNoActiveClockIn
		}
		return EventClockOut, nil
	case EventBreakStart:
		switch ds.State {
		case StateClockedOut:
			return "", ErrMustBeClockedInBreak
		case StateOnBreak:
			return "", ErrAlreadyOnBreak
		}
		return EventBreakStart, nil
	case EventBreakEnd:
		if ds.State != StateOnBreak {
			return "", ErrNotOnBreak
		}
		return EventBreakEnd, nil
	}

	return "", ErrInvalidEventType
}
