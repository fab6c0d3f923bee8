package attendance

import (
	"math"
	"time"
)

type BreakInterval struct {
	Start Event
	End   Event
}

func (b BreakInterval) Duration() time.Duration {
	return b.End.CapturedAt.Sub(b.Start.CapturedAt)
}

// PairBreaks matches every BREAK_END with the nearest preceding unmatched
// BREAK_START. A BREAK_END with no open start is dropped, and so is a start that
// is never ended.
func PairBreaks(events []Event) []BreakInterval {
	var (
		intervals []BreakInterval
		open      *Event
	)

	for _, ev := range SortEvents(events) {
		ev := ev
		switch ev.EventType {
		case EventBreakStart:
			open = &ev
		case EventBreakEnd:
			if open == nil {
				continue
			}
			intervals = append(intervals, BreakInterval{Start: *open, End: ev})
			open = nil
		}
	}

	return intervals
}

type Totals struct {
	HoursWorked  float64
	BreakMinutes int
}

// ComputeTotals derives a session's totals. Hours are the raw clock-in to
// clock-out span; break time is reported separately and never subtracted.
func ComputeTotals(clockIn, clockOut Event, breaks []Event) Totals {
	inSession := make([]Event, 0, len(breaks))
	for _, ev := range breaks {
		if !ev.EventType.IsBreak() {
			continue
		}
		if ev.CapturedAt.Before(clockIn.CapturedAt) || ev.CapturedAt.After(clockOut.CapturedAt) {
			continue
		}
		inSession = append(inSession, ev)
	}

	var breakTotal time.Duration
	for _, interval := range PairBreaks(inSession) {
		breakTotal += interval.Duration()
	}

	return Totals{
		HoursWorked:  clockOut.CapturedAt.Sub(clockIn.CapturedAt).Hours(),
		BreakMinutes: int(math.Round(breakTotal.Minutes())),
	}
}

// DayBucket normalizes t to local midnight in loc.
func DayBucket(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
