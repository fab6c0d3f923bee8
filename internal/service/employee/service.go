package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	cardRepo     employee.CardRepository
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	cardRepo employee.CardRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		cardRepo:     cardRepo,
	}
}

func requireManager(actor user.Actor) error {
	if actor.CompanyID == "" {
		return user.ErrCompanyIDRequired
	}
	if !actor.Can(user.PermissionEmployeeManage) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, actor user.Actor, id string) (employee.EmployeeResponse, error) {
	if err := requireManager(actor); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return mapEmployeeToResponse(emp), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, actor user.Actor, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := requireManager(actor); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var email *string
	if req.Email != nil && !validator.IsEmpty(*req.Email) {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &normalized
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		CompanyID:    actor.CompanyID,
		EmployeeCode: req.EmployeeCode,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		IsActive:     true,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			if pgErr.ConstraintName == "employees_company_email_key" {
				return employee.EmployeeResponse{}, employee.ErrEmailExists
			}
			return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("Employee created", "company_id", created.CompanyID, "employee_id", created.ID, "employee_code", created.EmployeeCode)

	return mapEmployeeToResponse(created), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, actor user.Actor, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := requireManager(actor); err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter, actor.CompanyID)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapEmployeeToResponse(emp))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// SetEmployeeStatus implements employee.EmployeeService. Attendance history of a
// deactivated employee is kept; the employee can no longer tap.
func (s *EmployeeServiceImpl) SetEmployeeStatus(ctx context.Context, actor user.Actor, req employee.UpdateStatusRequest) (employee.EmployeeResponse, error) {
	if err := requireManager(actor); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	current, err := s.employeeRepo.GetByID(ctx, req.ID, actor.CompanyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if current.IsActive == *req.IsActive {
		if current.IsActive {
			return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyActive
		}
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyInactive
	}

	updated, err := s.employeeRepo.SetActive(ctx, req.ID, actor.CompanyID, *req.IsActive)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee status: %w", err)
	}

	slog.Info("Employee status changed", "company_id", actor.CompanyID, "employee_id", updated.ID, "is_active", updated.IsActive)

	return mapEmployeeToResponse(updated), nil
}

// IssueCard implements employee.EmployeeService.
func (s *EmployeeServiceImpl) IssueCard(ctx context.Context, actor user.Actor, req employee.IssueCardRequest) (employee.CardResponse, error) {
	if err := requireManager(actor); err != nil {
		return employee.CardResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.CardResponse{}, err
	}
	if !validator.IsValidUUID(req.EmployeeID) {
		return employee.CardResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, actor.CompanyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.CardResponse{}, err
		}
		return employee.CardResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return employee.CardResponse{}, employee.ErrEmployeeInactive
	}

	created, err := s.cardRepo.Create(ctx, employee.Card{
		CompanyID:  actor.CompanyID,
		EmployeeID: emp.ID,
		UID:        req.UID,
		Label:      req.Label,
		IsActive:   true,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return employee.CardResponse{}, employee.ErrCardUIDExists
		}
		return employee.CardResponse{}, fmt.Errorf("failed to issue card: %w", err)
	}

	slog.Info("Card issued", "company_id", actor.CompanyID, "employee_id", emp.ID, "card_id", created.ID)

	return mapCardToResponse(created), nil
}

// ListCards implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListCards(ctx context.Context, actor user.Actor, employeeID string) ([]employee.CardResponse, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if !validator.IsValidUUID(employeeID) {
		return nil, employee.ErrEmployeeNotFound
	}

	if _, err := s.employeeRepo.GetByID(ctx, employeeID, actor.CompanyID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	cards, err := s.cardRepo.ListByEmployee(ctx, employeeID, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	responses := make([]employee.CardResponse, 0, len(cards))
	for _, c := range cards {
		responses = append(responses, mapCardToResponse(c))
	}
	return responses, nil
}

// DeactivateCard implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeactivateCard(ctx context.Context, actor user.Actor, cardID string) (employee.CardResponse, error) {
	if err := requireManager(actor); err != nil {
		return employee.CardResponse{}, err
	}
	if !validator.IsValidUUID(cardID) {
		return employee.CardResponse{}, employee.ErrCardNotFound
	}

	current, err := s.cardRepo.GetByID(ctx, cardID, actor.CompanyID)
	if err != nil {
		if errors.Is(err, employee.ErrCardNotFound) {
			return employee.CardResponse{}, err
		}
		return employee.CardResponse{}, fmt.Errorf("failed to get card: %w", err)
	}
	if !current.IsActive {
		return employee.CardResponse{}, employee.ErrCardAlreadyInactive
	}

	updated, err := s.cardRepo.Deactivate(ctx, cardID, actor.CompanyID)
	if err != nil {
		return employee.CardResponse{}, fmt.Errorf("failed to deactivate card: %w", err)
	}

	slog.Info("Card deactivated", "company_id", actor.CompanyID, "card_id", updated.ID)

	return mapCardToResponse(updated), nil
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:           emp.ID,
		EmployeeCode: emp.EmployeeCode,
		FullName:     emp.FullName,
		Email:        emp.Email,
		IsActive:     emp.IsActive,
		CreatedAt:    emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    emp.UpdatedAt.Format(time.RFC3339),
	}
}

func mapCardToResponse(c employee.Card) employee.CardResponse {
	var lastUsed *string
	if c.LastUsedAt != nil {
		formatted := c.LastUsedAt.Format(time.RFC3339)
		lastUsed = &formatted
	}
	return employee.CardResponse{
		ID:         c.ID,
		EmployeeID: c.EmployeeID,
		UID:        c.UID,
		Label:      c.Label,
		IsActive:   c.IsActive,
		LastUsedAt: lastUsed,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
