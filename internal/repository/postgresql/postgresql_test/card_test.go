package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-007", "Dana Reyes")
	repo := postgresql.NewCardRepository(db)

	card, err := repo.Create(ctx, employee.Card{CompanyID: companyID, EmployeeID: emp.ID, UID: "04A1B2C3"})
	require.NoError(t, err)
	assert.True(t, card.IsActive)

	found, err := repo.GetActiveByUID(ctx, companyID, "04A1B2C3")
	require.NoError(t, err)
	assert.Equal(t, card.ID, found.ID)

	latest, err := repo.GetLatestActiveByEmployee(ctx, emp.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, latest.ID)

	// The same uid cannot be active twice in one company
	_, err = repo.Create(ctx, employee.Card{CompanyID: companyID, EmployeeID: emp.ID, UID: "04A1B2C3"})
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)

	usedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastUsed(ctx, card.ID, companyID, usedAt))

	deactivated, err := repo.Deactivate(ctx, card.ID, companyID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = repo.GetActiveByUID(ctx, companyID, "04A1B2C3")
	assert.ErrorIs(t, err, employee.ErrCardNotFound)

	// A deactivated uid can be issued again
	_, err = repo.Create(ctx, employee.Card{CompanyID: companyID, EmployeeID: emp.ID, UID: "04A1B2C3"})
	require.NoError(t, err)

	cards, err := repo.ListByEmployee(ctx, emp.ID, companyID)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestEmployeeRepository_ActiveByCode(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companyID := seedCompany(t, db, "Acme")
	emp := seedEmployee(t, db, companyID, "EMP-007", "Dana Reyes")
	repo := postgresql.NewEmployeeRepository(db)

	found, err := repo.GetActiveByCode(ctx, companyID, "EMP-007")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, found.ID)

	_, err = repo.SetActive(ctx, emp.ID, companyID, false)
	require.NoError(t, err)

	_, err = repo.GetActiveByCode(ctx, companyID, "EMP-007")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	other := seedCompany(t, db, "Other")
	_, err = repo.GetByID(ctx, emp.ID, other)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
