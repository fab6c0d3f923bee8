package employee

import (
	"context"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
)

// EmployeeService defines business logic for the employee registry and NFC cards.
// Every call is scoped to actor.CompanyID.
type EmployeeService interface {
	// GetEmployee retrieves a single employee by ID
	GetEmployee(ctx context.Context, actor user.Actor, id string) (EmployeeResponse, error)

	// CreateEmployee registers a new employee
	CreateEmployee(ctx context.Context, actor user.Actor, req CreateEmployeeRequest) (EmployeeResponse, error)

	// ListEmployees lists employees with filters
	ListEmployees(ctx context.Context, actor user.Actor, filter EmployeeFilter) (ListEmployeeResponse, error)

	// SetEmployeeStatus activates or deactivates an employee
	SetEmployeeStatus(ctx context.Context, actor user.Actor, req UpdateStatusRequest) (EmployeeResponse, error)

	// IssueCard assigns a new NFC card to an active employee
	IssueCard(ctx context.Context, actor user.Actor, req IssueCardRequest) (CardResponse, error)

	// ListCards lists all cards of an employee
	ListCards(ctx context.Context, actor user.Actor, employeeID string) ([]CardResponse, error)

	// DeactivateCard revokes a card; the uid becomes free for reissue
	DeactivateCard(ctx context.Context, actor user.Actor, cardID string) (CardResponse, error)
}
