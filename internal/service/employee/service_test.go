package employee

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "6f1c0a52-3d47-4b6e-9a51-0c2f3f7d1a01"

// memEmployeeRepo enforces the same unique keys as the employees table.
type memEmployeeRepo struct {
	mu   sync.Mutex
	rows map[string]employee.Employee
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memEmployeeRepo) GetActiveByCode(_ context.Context, companyID, code string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.CompanyID == companyID && e.EmployeeCode == code && e.IsActive {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *memEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.CompanyID != e.CompanyID {
			continue
		}
		if existing.EmployeeCode == e.EmployeeCode {
			return employee.Employee{}, &pgconn.PgError{Code: "23505", ConstraintName: "employees_company_code_key"}
		}
		if existing.Email != nil && e.Email != nil && *existing.Email == *e.Email {
			return employee.Employee{}, &pgconn.PgError{Code: "23505", ConstraintName: "employees_company_email_key"}
		}
	}
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.rows[e.ID] = e
	return e, nil
}

func (r *memEmployeeRepo) List(_ context.Context, filter employee.EmployeeFilter, companyID string) ([]employee.Employee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.rows {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memEmployeeRepo) SetActive(_ context.Context, id, companyID string, active bool) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.IsActive = active
	r.rows[id] = e
	return e, nil
}

type memCardRepo struct {
	mu   sync.Mutex
	rows []employee.Card
}

func (r *memCardRepo) GetByID(_ context.Context, id, companyID string) (employee.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id && c.CompanyID == companyID {
			return c, nil
		}
	}
	return employee.Card{}, employee.ErrCardNotFound
}

func (r *memCardRepo) GetActiveByUID(_ context.Context, companyID, uid string) (employee.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.UID == uid && c.CompanyID == companyID && c.IsActive {
			return c, nil
		}
	}
	return employee.Card{}, employee.ErrCardNotFound
}

func (r *memCardRepo) GetLatestActiveByEmployee(_ context.Context, employeeID, companyID string) (employee.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		c := r.rows[i]
		if c.EmployeeID == employeeID && c.CompanyID == companyID && c.IsActive {
			return c, nil
		}
	}
	return employee.Card{}, employee.ErrCardNotFound
}

func (r *memCardRepo) Create(_ context.Context, c employee.Card) (employee.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.CompanyID == c.CompanyID && existing.UID == c.UID && existing.IsActive {
			return employee.Card{}, &pgconn.PgError{Code: "23505", ConstraintName: "nfc_cards_company_uid_active_key"}
		}
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	r.rows = append(r.rows, c)
	return c, nil
}

func (r *memCardRepo) Deactivate(_ context.Context, id, companyID string) (employee.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.rows {
		if c.ID == id && c.CompanyID == companyID {
			r.rows[i].IsActive = false
			return r.rows[i], nil
		}
	}
	return employee.Card{}, employee.ErrCardNotFound
}

func (r *memCardRepo) ListByEmployee(_ context.Context, employeeID, companyID string) ([]employee.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Card
	for _, c := range r.rows {
		if c.EmployeeID == employeeID && c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCardRepo) TouchLastUsed(_ context.Context, id, companyID string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.rows {
		if c.ID == id && c.CompanyID == companyID {
			r.rows[i].LastUsedAt = &usedAt
		}
	}
	return nil
}

func newTestService() (employee.EmployeeService, *memEmployeeRepo, *memCardRepo) {
	emps := &memEmployeeRepo{rows: map[string]employee.Employee{}}
	cards := &memCardRepo{}
	return NewEmployeeService(emps, cards), emps, cards
}

var employer = user.Actor{UserID: "u-1", CompanyID: testCompanyID, Role: user.RoleEmployer}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }

func TestEmployeeService_CreateEmployee(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	created, err := svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{
		EmployeeCode: " EMP-007 ",
		FullName:     "Jordan Lee",
		Email:        strPtr("Jordan.Lee@Example.com"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "EMP-007", created.EmployeeCode)
	assert.True(t, created.IsActive)
	require.NotNil(t, created.Email)
	assert.Equal(t, "jordan.lee@example.com", *created.Email)

	_, err = svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{EmployeeCode: "EMP-007", FullName: "Someone Else"})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{EmployeeCode: "EMP-008", FullName: "Twin", Email: strPtr("jordan.lee@example.com")})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestEmployeeService_CreateEmployee_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateEmployee(context.Background(), employer, employee.CreateEmployeeRequest{EmployeeCode: "bad code!", FullName: ""})
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	fields := vErrs.ToMap()
	assert.Contains(t, fields, "employee_code")
	assert.Contains(t, fields, "full_name")
}

func TestEmployeeService_RequiresManager(t *testing.T) {
	svc, _, _ := newTestService()
	kiosk := user.Actor{UserID: "k-1", CompanyID: testCompanyID, Role: user.RoleEmployee}

	_, err := svc.CreateEmployee(context.Background(), kiosk, employee.CreateEmployeeRequest{EmployeeCode: "EMP-1", FullName: "X"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.ListEmployees(context.Background(), user.Actor{Role: user.RoleEmployer}, employee.EmployeeFilter{})
	assert.ErrorIs(t, err, user.ErrCompanyIDRequired)
}

func TestEmployeeService_SetEmployeeStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	created, err := svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{EmployeeCode: "EMP-010", FullName: "Casey"})
	require.NoError(t, err)

	_, err = svc.SetEmployeeStatus(ctx, employer, employee.UpdateStatusRequest{ID: created.ID, IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyActive)

	updated, err := svc.SetEmployeeStatus(ctx, employer, employee.UpdateStatusRequest{ID: created.ID, IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.IssueCard(ctx, employer, employee.IssueCardRequest{EmployeeID: created.ID, UID: "04:AA"})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	other := user.Actor{UserID: "u-2", CompanyID: uuid.New().String(), Role: user.RoleEmployer}
	_, err = svc.SetEmployeeStatus(ctx, other, employee.UpdateStatusRequest{ID: created.ID, IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeService_CardLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	a, err := svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{EmployeeCode: "EMP-A", FullName: "Avery"})
	require.NoError(t, err)
	b, err := svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{EmployeeCode: "EMP-B", FullName: "Blake"})
	require.NoError(t, err)

	card, err := svc.IssueCard(ctx, employer, employee.IssueCardRequest{EmployeeID: a.ID, UID: "04:A2:19:7F", Label: strPtr("Blue fob")})
	require.NoError(t, err)
	assert.True(t, card.IsActive)
	assert.Nil(t, card.LastUsedAt)

	_, err = svc.IssueCard(ctx, employer, employee.IssueCardRequest{EmployeeID: b.ID, UID: "04:A2:19:7F"})
	assert.ErrorIs(t, err, employee.ErrCardUIDExists)

	deactivated, err := svc.DeactivateCard(ctx, employer, card.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = svc.DeactivateCard(ctx, employer, card.ID)
	assert.ErrorIs(t, err, employee.ErrCardAlreadyInactive)

	// The uid is free again once its card is revoked
	reissued, err := svc.IssueCard(ctx, employer, employee.IssueCardRequest{EmployeeID: b.ID, UID: "04:A2:19:7F"})
	require.NoError(t, err)
	assert.Equal(t, b.ID, reissued.EmployeeID)

	cards, err := svc.ListCards(ctx, employer, a.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	_, err = svc.ListCards(ctx, employer, "nope")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeService_ListEmployees(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	list, err := svc.ListEmployees(ctx, employer, employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", list.Showing)
	assert.Equal(t, 20, list.Limit)

	for _, code := range []string{"E1", "E2", "E3"} {
		_, err := svc.CreateEmployee(ctx, employer, employee.CreateEmployeeRequest{EmployeeCode: code, FullName: "Staff " + code})
		require.NoError(t, err)
	}

	list, err = svc.ListEmployees(ctx, employer, employee.EmployeeFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, "1-2 of 3", list.Showing)
}
