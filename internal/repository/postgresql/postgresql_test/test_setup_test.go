package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
	"github.com/mrjaketay/timeApp-sub000/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies migrations and empties every
// table. Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, database.Migrate(dsn))

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, "TRUNCATE TABLE companies CASCADE")
	require.NoError(t, err)

	return db
}

func seedCompany(t *testing.T, db *database.DB, name string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(context.Background(), "INSERT INTO companies (id, name) VALUES ($1, $2)", id, name)
	require.NoError(t, err)
	return id
}

func seedEmployee(t *testing.T, db *database.DB, companyID, code, name string) employee.Employee {
	t.Helper()

	emp, err := postgresql.NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		CompanyID:    companyID,
		EmployeeCode: code,
		FullName:     name,
		IsActive:     true,
	})
	require.NoError(t, err)
	return emp
}
