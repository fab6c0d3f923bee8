package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/metrics"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

// PutOnBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PutOnBreak(ctx context.Context, actor user.Actor, req attendance.OverrideRequest) (attendance.OverrideResult, error) {
	return s.override(ctx, actor, req, attendance.OverridePutOnBreak)
}

// EndBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context, actor user.Actor, req attendance.OverrideRequest) (attendance.OverrideResult, error) {
	return s.override(ctx, actor, req, attendance.OverrideEndBreak)
}

// ClockOutEmployee implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOutEmployee(ctx context.Context, actor user.Actor, req attendance.OverrideRequest) (attendance.OverrideResult, error) {
	return s.override(ctx, actor, req, attendance.OverrideClockOut)
}

func (s *AttendanceServiceImpl) override(ctx context.Context, actor user.Actor, req attendance.OverrideRequest, action attendance.OverrideAction) (attendance.OverrideResult, error) {
	if !actor.CanOverride() {
		return attendance.OverrideResult{}, user.ErrOverrideAccessRequired
	}
	if actor.CompanyID == "" {
		return attendance.OverrideResult{}, user.ErrCompanyIDRequired
	}

	if err := req.Validate(); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			metrics.RecordRejection(string(attendance.RejectionValidation), sourceOverride)
			return attendance.OverrideResult{
				Success: false,
				Error:   vErrs.Error(),
				Code:    attendance.RejectionValidation,
			}, nil
		}
		return attendance.OverrideResult{}, err
	}

	emp, err := s.resolver.ResolveByID(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		return attendance.OverrideResult{}, fmt.Errorf("failed to resolve employee: %w", err)
	}
	if emp == nil {
		return s.rejectOverride(attendance.ErrEmployeeNotInCompany), nil
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

		eventType, err := attendance.ResolveOverride(action, ds)
		if err != nil {
			return err
		}

		// Overrides have no device position; the session's clock-in location stands in.
		clockIn := ds.ClockIn
		accepted, err = s.events.Insert(ctx, attendance.Event{
			EmployeeID:     emp.EmployeeID,
			CompanyID:      emp.CompanyID,
			EventType:      eventType,
			CapturedAt:     now,
			LocationLat:    clockIn.LocationLat,
			LocationLng:    clockIn.LocationLng,
			AccuracyMeters: clockIn.AccuracyMeters,
			Address:        clockIn.Address,
			Notes:          req.Notes,
		})
		if err != nil {
			return fmt.Errorf("failed to persist %s: %w", eventType, err)
		}

		if eventType == attendance.EventClockOut {
			ts, err := s.aggregator.CloseSession(ctx, *clockIn, accepted, now)
			if err != nil {
				return err
			}
			timesheet = &ts
		}

		return nil
	})
	if err != nil {
		if rej, ok := attendance.AsRejection(err); ok {
			return s.rejectOverride(rej), nil
		}
		return attendance.OverrideResult{}, fmt.Errorf("%s for employee %s failed: %w", action, emp.EmployeeID, err)
	}

	metrics.RecordTransition(string(accepted.EventType), sourceOverride, time.Since(started))

	eventResp := mapEventToResponse(accepted, &emp.FullName)
	s.publish(emp.CompanyID, eventResp)

	result := attendance.OverrideResult{
		Success: true,
		Message: action.SuccessMessage(emp.FullName),
		Event:   &eventResp,
	}
	if timesheet != nil {
		tsResp := mapTimesheetToResponse(*timesheet)
		result.Timesheet = &tsResp
	}

	return result, nil
}

func (s *AttendanceServiceImpl) rejectOverride(rej *attendance.Rejection) attendance.OverrideResult {
	metrics.RecordRejection(string(rej.Kind), sourceOverride)
	return attendance.OverrideResult{
		Success: false,
		Error:   rej.Reason,
		Code:    rej.Kind,
	}
}
