package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/metrics"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

const (
	sourceTap      = "tap"
	sourceOverride = "override"
)

type AttendanceServiceImpl struct {
	locker     attendance.TransitionLocker
	events     attendance.EventRepository
	resolver   attendance.EmployeeResolver
	aggregator *Aggregator
	publisher  attendance.Publisher
	loc        *time.Location
	now        func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces the wall clock used to stamp events
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) {
		s.now = now
	}
}

// WithPublisher sends every accepted event to p after its transition committed
func WithPublisher(p attendance.Publisher) Option {
	return func(s *AttendanceServiceImpl) {
		s.publisher = p
	}
}

func NewAttendanceService(
	locker attendance.TransitionLocker,
	events attendance.EventRepository,
	timesheets attendance.TimesheetRepository,
	resolver attendance.EmployeeResolver,
	loc *time.Location,
	opts ...Option,
) *AttendanceServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	s := &AttendanceServiceImpl{
		locker:     locker,
		events:     events,
		resolver:   resolver,
		aggregator: NewAggregator(events, timesheets, loc),
		loc:        loc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// clock returns the capture time for a new event. Postgres keeps microseconds.
func (s *AttendanceServiceImpl) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Tap implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Tap(ctx context.Context, actor user.Actor, req attendance.TapRequest) (attendance.TapResult, error) {
	if err := req.Validate(); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			metrics.RecordRejection(string(attendance.RejectionValidation), sourceTap)
			return attendance.TapResult{
				Accepted: false,
				Reason:   "Invalid tap request",
				Code:     attendance.RejectionValidation,
				Details:  vErrs.ToMap(),
			}, nil
		}
		return attendance.TapResult{}, err
	}

	if actor.CompanyID == "" {
		return attendance.TapResult{}, user.ErrCompanyIDRequired
	}

	emp, err := s.resolver.ResolveByCredential(ctx, actor.CompanyID, strings.TrimSpace(req.Credential))
	if err != nil {
		return attendance.TapResult{}, fmt.Errorf("failed to resolve credential: %w", err)
	}
	if emp == nil || !emp.IsActive {
		return s.rejectTap(attendance.ErrEmployeeNotFoundOrInactive), nil
	}

	var (
		accepted  attendance.Event
		timesheet *attendance.Timesheet
		started   = time.Now()
	)

	err = s.locker.WithEmployeeLock(ctx, emp.CompanyID, emp.EmployeeID, func(ctx context.Context) error {
		now := s.clock()

		ds, err := s.loadState(ctx, emp.EmployeeID, emp.CompanyID)
		if err != nil {
			return err
		}

		eventType, err := attendance.ResolveIntent(ds, req.RequestedType(), now)
		if err != nil {
			return err
		}

		loc := req.Location()
		accepted, err = s.events.Insert(ctx, attendance.Event{
			EmployeeID:     emp.EmployeeID,
			CompanyID:      emp.CompanyID,
			EventType:      eventType,
			CapturedAt:     now,
			LocationLat:    loc.Latitude,
			LocationLng:    loc.Longitude,
			AccuracyMeters: loc.AccuracyMeters,
			Address:        loc.Address,
			CardID:         emp.CardID,
			DeviceInfo:     req.DeviceInfo,
		})
		if err != nil {
			return fmt.Errorf("failed to persist %s: %w", eventType, err)
		}

		if eventType == attendance.EventClockOut {
			ts, err := s.aggregator.CloseSession(ctx, *ds.ClockIn, accepted, now)
			if err != nil {
				return err
			}
			timesheet = &ts
		}

		if emp.CardID != nil {
			if err := s.resolver.TouchCredential(ctx, emp.CompanyID, *emp.CardID, now); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if rej, ok := attendance.AsRejection(err); ok {
			return s.rejectTap(rej), nil
		}
		return attendance.TapResult{}, fmt.Errorf("tap for employee %s failed: %w", emp.EmployeeID, err)
	}

	metrics.RecordTransition(string(accepted.EventType), sourceTap, time.Since(started))

	eventResp := mapEventToResponse(accepted, &emp.FullName)
	s.publish(emp.CompanyID, eventResp)

	result := attendance.TapResult{
		Accepted:     true,
		EventType:    &accepted.EventType,
		EmployeeName: emp.FullName,
		Event:        &eventResp,
	}
	if timesheet != nil {
		tsResp := mapTimesheetToResponse(*timesheet)
		result.Timesheet = &tsResp
	}

	return result, nil
}

func (s *AttendanceServiceImpl) rejectTap(rej *attendance.Rejection) attendance.TapResult {
	metrics.RecordRejection(string(rej.Kind), sourceTap)
	return attendance.TapResult{
		Accepted: false,
		Reason:   rej.Reason,
		Code:     rej.Kind,
	}
}

// loadState derives the employee's state from the few events that matter:
// the latest event, the latest CLOCK_IN and anything recorded after it.
func (s *AttendanceServiceImpl) loadState(ctx context.Context, employeeID, companyID string) (attendance.DayState, error) {
	recent, err := s.events.FindMostRecent(ctx, employeeID, companyID)
	if err != nil {
		return attendance.DayState{}, err
	}
	if recent == nil {
		return attendance.DeriveState(nil), nil
	}
	if recent.EventType == attendance.EventClockOut {
		return attendance.DeriveState([]attendance.Event{*recent}), nil
	}

	lastIn, err := s.events.FindMostRecentByType(ctx, employeeID, companyID, attendance.EventClockIn)
	if err != nil {
		return attendance.DayState{}, err
	}
	if lastIn == nil {
		// Only stray break events so far
		lastOut, err := s.events.FindMostRecentByType(ctx, employeeID, companyID, attendance.EventClockOut)
		if err != nil {
			return attendance.DayState{}, err
		}
		if lastOut == nil {
			return attendance.DeriveState(nil), nil
		}
		return attendance.DeriveState([]attendance.Event{*lastOut}), nil
	}

	after, err := s.events.FindRange(ctx, employeeID, companyID,
		[]attendance.EventType{attendance.EventClockOut, attendance.EventBreakStart, attendance.EventBreakEnd},
		lastIn.CapturedAt, recent.CapturedAt)
	if err != nil {
		return attendance.DayState{}, err
	}

	return attendance.DeriveState(append([]attendance.Event{*lastIn}, after...)), nil
}

func (s *AttendanceServiceImpl) publish(companyID string, event attendance.EventResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishEvent(companyID, event)
}

// GetState implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetState(ctx context.Context, actor user.Actor, employeeID string) (attendance.DayStateResponse, error) {
	emp, err := s.resolver.ResolveByID(ctx, actor.CompanyID, employeeID)
	if err != nil {
		return attendance.DayStateResponse{}, fmt.Errorf("failed to resolve employee: %w", err)
	}
	if emp == nil {
		return attendance.DayStateResponse{}, attendance.ErrEmployeeNotInCompany
	}

	ds, err := s.loadState(ctx, emp.EmployeeID, emp.CompanyID)
	if err != nil {
		return attendance.DayStateResponse{}, fmt.Errorf("failed to load state: %w", err)
	}

	resp := attendance.DayStateResponse{
		EmployeeID:    emp.EmployeeID,
		EmployeeName:  emp.FullName,
		State:         ds.State,
		CanClockIn:    ds.State == attendance.StateClockedOut,
		CanClockOut:   ds.State != attendance.StateClockedOut,
		CanStartBreak: ds.State == attendance.StateClockedIn,
		CanEndBreak:   ds.State == attendance.StateOnBreak,
	}
	if ds.LastEvent != nil {
		since := ds.Since.In(s.loc).Format(time.RFC3339)
		lastType := string(ds.LastEvent.EventType)
		resp.Since = &since
		resp.LastEventType = &lastType
	}
	if ds.ClockIn != nil {
		clockInAt := ds.ClockIn.CapturedAt.In(s.loc).Format(time.RFC3339)
		resp.ClockInAt = &clockInAt
	}

	return resp, nil
}

// ListEvents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEvents(ctx context.Context, actor user.Actor, filter attendance.EventFilter) (attendance.ListEventsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListEventsResponse{}, err
	}
	filter.ResolveRange(s.loc)

	if actor.CompanyID == "" {
		return attendance.ListEventsResponse{}, user.ErrCompanyIDRequired
	}

	events, total, err := s.events.List(ctx, filter, actor.CompanyID)
	if err != nil {
		return attendance.ListEventsResponse{}, fmt.Errorf("failed to list attendance events: %w", err)
	}

	responses := make([]attendance.EventResponse, 0, len(events))
	for _, ev := range events {
		responses = append(responses, mapEventToResponse(ev, ev.EmployeeName))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListEventsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Events:     responses,
	}, nil
}

// mapEventToResponse converts an Event entity to EventResponse
func mapEventToResponse(ev attendance.Event, employeeName *string) attendance.EventResponse {
	return attendance.EventResponse{
		ID:             ev.ID,
		EmployeeID:     ev.EmployeeID,
		EmployeeName:   employeeName,
		EventType:      string(ev.EventType),
		CapturedAt:     ev.CapturedAt.Format(time.RFC3339Nano),
		Latitude:       ev.LocationLat,
		Longitude:      ev.LocationLng,
		AccuracyMeters: ev.AccuracyMeters,
		Address:        ev.Address,
		CardID:         ev.CardID,
		DeviceInfo:     ev.DeviceInfo,
		Notes:          ev.Notes,
	}
}

// mapTimesheetToResponse converts a Timesheet entity to TimesheetResponse
func mapTimesheetToResponse(ts attendance.Timesheet) attendance.TimesheetResponse {
	return attendance.TimesheetResponse{
		ID:           ts.ID,
		EmployeeID:   ts.EmployeeID,
		EmployeeName: ts.EmployeeName,
		EmployeeCode: ts.EmployeeCode,
		Date:         ts.Date.Format("2006-01-02"),
		ClockInID:    ts.ClockInID,
		ClockOutID:   ts.ClockOutID,
		HoursWorked:  ts.HoursWorked,
		BreakMinutes: ts.BreakMinutes,
		Notes:        ts.Notes,
		UpdatedAt:    ts.UpdatedAt.Format(time.RFC3339),
	}
}

// MapTimesheetToResponse is shared with the report service
func MapTimesheetToResponse(ts attendance.Timesheet) attendance.TimesheetResponse {
	return mapTimesheetToResponse(ts)
}

// MapEventToResponse is shared with the report service
func MapEventToResponse(ev attendance.Event) attendance.EventResponse {
	return mapEventToResponse(ev, ev.EmployeeName)
}
