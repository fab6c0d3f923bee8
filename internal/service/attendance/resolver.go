package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

type employeeResolver struct {
	employees employee.EmployeeRepository
	cards     employee.CardRepository
}

// NewEmployeeResolver resolves a credential as an NFC card uid first and falls
// back to a manually typed employee code.
func NewEmployeeResolver(employees employee.EmployeeRepository, cards employee.CardRepository) attendance.EmployeeResolver {
	return &employeeResolver{
		employees: employees,
		cards:     cards,
	}
}

func (r *employeeResolver) ResolveByCredential(ctx context.Context, companyID string, credential string) (*attendance.ResolvedEmployee, error) {
	if credential == "" {
		return nil, nil
	}

	card, err := r.cards.GetActiveByUID(ctx, companyID, credential)
	if err == nil {
		emp, err := r.employees.GetByID(ctx, card.EmployeeID, companyID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil, nil
			}
			return nil, err
		}
		cardID := card.ID
		return toResolved(emp, &cardID), nil
	}
	if !errors.Is(err, employee.ErrCardNotFound) {
		return nil, err
	}

	emp, err := r.employees.GetActiveByCode(ctx, companyID, credential)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var cardID *string
	latest, err := r.cards.GetLatestActiveByEmployee(ctx, emp.ID, companyID)
	switch {
	case err == nil:
		cardID = &latest.ID
	case !errors.Is(err, employee.ErrCardNotFound):
		return nil, err
	}

	return toResolved(emp, cardID), nil
}

func (r *employeeResolver) ResolveByID(ctx context.Context, companyID string, employeeID string) (*attendance.ResolvedEmployee, error) {
	if !validator.IsValidUUID(employeeID) {
		return nil, nil
	}

	emp, err := r.employees.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toResolved(emp, nil), nil
}

func (r *employeeResolver) TouchCredential(ctx context.Context, companyID string, cardID string, usedAt time.Time) error {
	return r.cards.TouchLastUsed(ctx, cardID, companyID, usedAt)
}

func toResolved(emp employee.Employee, cardID *string) *attendance.ResolvedEmployee {
	return &attendance.ResolvedEmployee{
		EmployeeID: emp.ID,
		CompanyID:  emp.CompanyID,
		FullName:   emp.FullName,
		IsActive:   emp.IsActive,
		CardID:     cardID,
	}
}
