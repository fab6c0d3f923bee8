package postgresql

import (
	"context"
	"fmt"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/keylock"
)

type transitionLocker struct {
	db    *database.DB
	local *keylock.KeyedMutex
}

// NewTransitionLocker fences one employee's transitions in two steps: an
// in-process keyed mutex, then a transaction-scoped advisory lock so that
// separate API instances serialize as well.
func NewTransitionLocker(db *database.DB) attendance.TransitionLocker {
	return &transitionLocker{
		db:    db,
		local: keylock.New(),
	}
}

func (l *transitionLocker) WithEmployeeLock(ctx context.Context, companyID string, employeeID string, fn func(ctx context.Context) error) error {
	key := companyID + ":" + employeeID

	unlock, err := l.local.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to acquire employee lock: %w", err)
	}
	defer unlock()

	return WithTransaction(ctx, l.db, func(ctx context.Context) error {
		if _, err := GetQuerier(ctx, l.db).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("failed to acquire advisory lock: %w", err)
		}
		return fn(ctx)
	})
}
