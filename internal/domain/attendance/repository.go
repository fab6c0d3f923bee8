package attendance

import (
	"context"
	"time"
)

// EventRepository is the append-only event store. All methods take companyID to
// prevent cross-company data access.
type EventRepository interface {
	// Insert appends a new event. ID is assigned when empty.
	Insert(ctx context.Context, event Event) (Event, error)

	// FindMostRecent returns the latest event of the employee, nil when there is none.
	FindMostRecent(ctx context.Context, employeeID string, companyID string) (*Event, error)

	// FindMostRecentByType returns the latest event of the given type, nil when there is none.
	FindMostRecentByType(ctx context.Context, employeeID string, companyID string, eventType EventType) (*Event, error)

	// FindRange returns events of the given types captured within [from, to], ascending.
	FindRange(ctx context.Context, employeeID string, companyID string, types []EventType, from, to time.Time) ([]Event, error)

	// List retrieves events with filters and pagination, newest first.
	List(ctx context.Context, filter EventFilter, companyID string) ([]Event, int64, error)

	// ListOpenSessions returns, across companies, the CLOCK_IN of every session that
	// is still open and was opened before the cutoff.
	ListOpenSessions(ctx context.Context, openedBefore time.Time) ([]Event, error)
}

type TimesheetRepository interface {
	// Upsert merges ts into the (employee, company, date) row. A stored row is
	// only replaced by a recompute whose clock-out is not older than its own.
	Upsert(ctx context.Context, ts Timesheet) (Timesheet, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, companyID string, date time.Time) (*Timesheet, error)
}

// TransitionLocker serializes state transitions of one employee. fn runs with a
// context whose repository calls share the lock's transaction.
type TransitionLocker interface {
	WithEmployeeLock(ctx context.Context, companyID string, employeeID string, fn func(ctx context.Context) error) error
}

type ResolvedEmployee struct {
	EmployeeID string
	CompanyID  string
	FullName   string
	IsActive   bool
	CardID     *string
}

// EmployeeResolver maps tap credentials to employees of one company.
type EmployeeResolver interface {
	// ResolveByCredential returns nil when the credential matches no active employee.
	ResolveByCredential(ctx context.Context, companyID string, credential string) (*ResolvedEmployee, error)

	// ResolveByID returns nil when the employee does not exist in the company.
	ResolveByID(ctx context.Context, companyID string, employeeID string) (*ResolvedEmployee, error)

	TouchCredential(ctx context.Context, companyID string, cardID string, usedAt time.Time) error
}

// Publisher receives accepted events after their transition committed.
type Publisher interface {
	PublishEvent(companyID string, event EventResponse)
}
