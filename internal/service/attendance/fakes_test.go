package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/keylock"
	"github.com/oklog/ulid/v2"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memEventRepo struct {
	mu     sync.Mutex
	events []attendance.Event
}

func (r *memEventRepo) Insert(_ context.Context, ev attendance.Event) (attendance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	ev.CreatedAt = ev.CapturedAt
	r.events = append(r.events, ev)
	return ev, nil
}

func (r *memEventRepo) of(employeeID, companyID string) []attendance.Event {
	var out []attendance.Event
	for _, ev := range r.events {
		if ev.EmployeeID == employeeID && ev.CompanyID == companyID {
			out = append(out, ev)
		}
	}
	return attendance.SortEvents(out)
}

func (r *memEventRepo) FindMostRecent(_ context.Context, employeeID, companyID string) (*attendance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.of(employeeID, companyID)
	if len(evs) == 0 {
		return nil, nil
	}
	return &evs[len(evs)-1], nil
}

func (r *memEventRepo) FindMostRecentByType(_ context.Context, employeeID, companyID string, eventType attendance.EventType) (*attendance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.of(employeeID, companyID)
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].EventType == eventType {
			return &evs[i], nil
		}
	}
	return nil, nil
}

func (r *memEventRepo) FindRange(_ context.Context, employeeID, companyID string, types []attendance.EventType, from, to time.Time) ([]attendance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Event
	for _, ev := range r.of(employeeID, companyID) {
		if ev.CapturedAt.Before(from) || ev.CapturedAt.After(to) {
			continue
		}
		for _, t := range types {
			if ev.EventType == t {
				out = append(out, ev)
				break
			}
		}
	}
	return out, nil
}

func (r *memEventRepo) List(_ context.Context, filter attendance.EventFilter, companyID string) ([]attendance.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Event
	for _, ev := range r.events {
		if ev.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && *filter.EmployeeID != ev.EmployeeID {
			continue
		}
		if filter.CapturedFrom != nil && ev.CapturedAt.Before(*filter.CapturedFrom) {
			continue
		}
		if filter.CapturedBefore != nil && !ev.CapturedAt.Before(*filter.CapturedBefore) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].Before(out[i]) })
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start > len(out) {
		start = len(out)
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func (r *memEventRepo) ListOpenSessions(_ context.Context, openedBefore time.Time) ([]attendance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := map[string]attendance.Event{}
	for _, ev := range attendance.SortEvents(r.events) {
		if ev.EventType == attendance.EventClockIn || ev.EventType == attendance.EventClockOut {
			latest[ev.CompanyID+":"+ev.EmployeeID] = ev
		}
	}
	var out []attendance.Event
	for _, ev := range latest {
		if ev.EventType == attendance.EventClockIn && ev.CapturedAt.Before(openedBefore) {
			out = append(out, ev)
		}
	}
	return out, nil
}

type memTimesheetRepo struct {
	mu   sync.Mutex
	rows map[string]attendance.Timesheet
}

func newMemTimesheetRepo() *memTimesheetRepo {
	return &memTimesheetRepo{rows: map[string]attendance.Timesheet{}}
}

func timesheetKey(employeeID, companyID string, date time.Time) string {
	return employeeID + "|" + companyID + "|" + date.Format("2006-01-02")
}

func (r *memTimesheetRepo) Upsert(_ context.Context, ts attendance.Timesheet) (attendance.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := timesheetKey(ts.EmployeeID, ts.CompanyID, ts.Date)
	if existing, ok := r.rows[key]; ok {
		if existing.ClockOutAt.After(ts.ClockOutAt) {
			return existing, nil
		}
		ts.ID = existing.ID
		ts.CreatedAt = existing.CreatedAt
		if ts.Notes == nil {
			ts.Notes = existing.Notes
		}
	} else {
		ts.ID = uuid.New().String()
		ts.CreatedAt = ts.ClockOutAt
	}
	ts.UpdatedAt = ts.ClockOutAt
	r.rows[key] = ts
	return ts, nil
}

func (r *memTimesheetRepo) GetByEmployeeAndDate(_ context.Context, employeeID, companyID string, date time.Time) (*attendance.Timesheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts, ok := r.rows[timesheetKey(employeeID, companyID, date)]
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

type memLocker struct {
	keys *keylock.KeyedMutex
}

func (l *memLocker) WithEmployeeLock(ctx context.Context, companyID, employeeID string, fn func(ctx context.Context) error) error {
	unlock, err := l.keys.Lock(ctx, companyID+":"+employeeID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

type memResolver struct {
	mu          sync.Mutex
	employees   map[string]attendance.ResolvedEmployee
	credentials map[string]string
	touched     map[string]time.Time
}

func newMemResolver() *memResolver {
	return &memResolver{
		employees:   map[string]attendance.ResolvedEmployee{},
		credentials: map[string]string{},
		touched:     map[string]time.Time{},
	}
}

func (r *memResolver) add(companyID, name, credential string, active bool) attendance.ResolvedEmployee {
	r.mu.Lock()
	defer r.mu.Unlock()
	cardID := uuid.New().String()
	emp := attendance.ResolvedEmployee{
		EmployeeID: uuid.New().String(),
		CompanyID:  companyID,
		FullName:   name,
		IsActive:   active,
		CardID:     &cardID,
	}
	r.employees[emp.EmployeeID] = emp
	r.credentials[credential] = emp.EmployeeID
	return emp
}

func (r *memResolver) ResolveByCredential(_ context.Context, companyID, credential string) (*attendance.ResolvedEmployee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.credentials[credential]
	if !ok {
		return nil, nil
	}
	emp := r.employees[id]
	if emp.CompanyID != companyID {
		return nil, nil
	}
	return &emp, nil
}

func (r *memResolver) ResolveByID(_ context.Context, companyID, employeeID string) (*attendance.ResolvedEmployee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	emp, ok := r.employees[employeeID]
	if !ok || emp.CompanyID != companyID {
		return nil, nil
	}
	return &emp, nil
}

func (r *memResolver) TouchCredential(_ context.Context, _ string, cardID string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[cardID] = usedAt
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]attendance.EventResponse
}

func (p *recordingPublisher) PublishEvent(companyID string, event attendance.EventResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[string][]attendance.EventResponse{}
	}
	p.events[companyID] = append(p.events[companyID], event)
}

func (p *recordingPublisher) count(companyID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[companyID])
}
