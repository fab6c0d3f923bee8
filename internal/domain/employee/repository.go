package employee

import (
	"context"
	"time"
)

// EmployeeRepository methods take companyID to prevent cross-company data access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	// GetActiveByCode returns ErrEmployeeNotFound unless an active employee has the code.
	GetActiveByCode(ctx context.Context, companyID string, employeeCode string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter, companyID string) ([]Employee, int64, error)
	SetActive(ctx context.Context, id string, companyID string, active bool) (Employee, error)
}

type CardRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Card, error)
	// GetActiveByUID returns ErrCardNotFound unless an active card of an active
	// employee has the uid.
	GetActiveByUID(ctx context.Context, companyID string, uid string) (Card, error)
	// GetLatestActiveByEmployee returns the most recently issued active card.
	GetLatestActiveByEmployee(ctx context.Context, employeeID string, companyID string) (Card, error)
	Create(ctx context.Context, newCard Card) (Card, error)
	Deactivate(ctx context.Context, id string, companyID string) (Card, error)
	ListByEmployee(ctx context.Context, employeeID string, companyID string) ([]Card, error)
	TouchLastUsed(ctx context.Context, id string, companyID string, usedAt time.Time) error
}
