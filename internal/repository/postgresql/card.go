package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
)

const cardColumns = `c.id, c.company_id, c.employee_id, c.uid, c.label, c.is_active, c.last_used_at, c.created_at`

type cardRepositoryImpl struct {
	db *database.DB
}

func NewCardRepository(db *database.DB) employee.CardRepository {
	return &cardRepositoryImpl{db: db}
}

func scanCard(row pgx.Row, extra ...any) (employee.Card, error) {
	var card employee.Card
	dest := []any{
		&card.ID, &card.CompanyID, &card.EmployeeID, &card.UID,
		&card.Label, &card.IsActive, &card.LastUsedAt, &card.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return card, err
}

// GetByID implements employee.CardRepository.
func (r *cardRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Card, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cardColumns + ` FROM nfc_cards c WHERE c.id = $1 AND c.company_id = $2`

	card, err := scanCard(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Card{}, employee.ErrCardNotFound
		}
		return employee.Card{}, fmt.Errorf("failed to get card by id %s: %w", id, err)
	}

	return card, nil
}

// GetActiveByUID implements employee.CardRepository.
func (r *cardRepositoryImpl) GetActiveByUID(ctx context.Context, companyID string, uid string) (employee.Card, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cardColumns + `, e.full_name
		FROM nfc_cards c
		JOIN employees e ON e.id = c.employee_id AND e.company_id = c.company_id
		WHERE c.company_id = $1 AND c.uid = $2 AND c.is_active AND e.is_active
	`

	var employeeName string
	card, err := scanCard(q.QueryRow(ctx, query, companyID, uid), &employeeName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Card{}, employee.ErrCardNotFound
		}
		return employee.Card{}, fmt.Errorf("failed to get card by uid: %w", err)
	}
	card.EmployeeName = &employeeName

	return card, nil
}

// GetLatestActiveByEmployee implements employee.CardRepository.
func (r *cardRepositoryImpl) GetLatestActiveByEmployee(ctx context.Context, employeeID string, companyID string) (employee.Card, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cardColumns + `
		FROM nfc_cards c
		WHERE c.employee_id = $1 AND c.company_id = $2 AND c.is_active
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT 1
	`

	card, err := scanCard(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Card{}, employee.ErrCardNotFound
		}
		return employee.Card{}, fmt.Errorf("failed to get latest card: %w", err)
	}

	return card, nil
}

// Create implements employee.CardRepository.
func (r *cardRepositoryImpl) Create(ctx context.Context, newCard employee.Card) (employee.Card, error) {
	q := GetQuerier(ctx, r.db)

	if newCard.ID == "" {
		newCard.ID = uuid.New().String()
	}

	query := `
		INSERT INTO nfc_cards (id, company_id, employee_id, uid, label, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING is_active, created_at
	`

	err := q.QueryRow(ctx, query,
		newCard.ID,
		newCard.CompanyID,
		newCard.EmployeeID,
		newCard.UID,
		newCard.Label,
	).Scan(&newCard.IsActive, &newCard.CreatedAt)
	if err != nil {
		return employee.Card{}, fmt.Errorf("failed to create card: %w", err)
	}

	return newCard, nil
}

// Deactivate implements employee.CardRepository.
func (r *cardRepositoryImpl) Deactivate(ctx context.Context, id string, companyID string) (employee.Card, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE nfc_cards c
		SET is_active = FALSE
		WHERE c.id = $1 AND c.company_id = $2
		RETURNING ` + cardColumns

	card, err := scanCard(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Card{}, employee.ErrCardNotFound
		}
		return employee.Card{}, fmt.Errorf("failed to deactivate card %s: %w", id, err)
	}

	return card, nil
}

// ListByEmployee implements employee.CardRepository.
func (r *cardRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, companyID string) ([]employee.Card, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cardColumns + `
		FROM nfc_cards c
		WHERE c.employee_id = $1 AND c.company_id = $2
		ORDER BY c.created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []employee.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}

	return cards, nil
}

// TouchLastUsed implements employee.CardRepository.
func (r *cardRepositoryImpl) TouchLastUsed(ctx context.Context, id string, companyID string, usedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE nfc_cards SET last_used_at = $1 WHERE id = $2 AND company_id = $3`, usedAt, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to update card last_used_at: %w", err)
	}

	return nil
}
