package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
	"github.com/oklog/ulid/v2"
)

const eventColumns = `
	ev.id, ev.employee_id, ev.company_id, ev.event_type, ev.captured_at,
	ev.location_lat, ev.location_lng, ev.accuracy_meters,
	ev.address, ev.card_id, ev.device_info, ev.notes, ev.created_at`

type attendanceEventRepository struct {
	db *database.DB
}

func NewAttendanceEventRepository(db *database.DB) attendance.EventRepository {
	return &attendanceEventRepository{db: db}
}

func scanEvent(row pgx.Row, extra ...any) (attendance.Event, error) {
	var ev attendance.Event
	dest := []any{
		&ev.ID, &ev.EmployeeID, &ev.CompanyID, &ev.EventType, &ev.CapturedAt,
		&ev.LocationLat, &ev.LocationLng, &ev.AccuracyMeters,
		&ev.Address, &ev.CardID, &ev.DeviceInfo, &ev.Notes, &ev.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return ev, err
}

// Insert implements attendance.EventRepository.
func (r *attendanceEventRepository) Insert(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	if event.ID == "" {
		event.ID = ulid.Make().String()
	}

	query := `
		INSERT INTO attendance_events (
			id, employee_id, company_id, event_type, captured_at,
			location_lat, location_lng, accuracy_meters,
			address, card_id, device_info, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID,
		event.EmployeeID,
		event.CompanyID,
		event.EventType,
		event.CapturedAt,
		event.LocationLat,
		event.LocationLng,
		event.AccuracyMeters,
		event.Address,
		event.CardID,
		event.DeviceInfo,
		event.Notes,
	).Scan(&event.CreatedAt)
	if err != nil {
		return attendance.Event{}, fmt.Errorf("failed to insert attendance event: %w", err)
	}

	return event, nil
}

// FindMostRecent implements attendance.EventRepository.
func (r *attendanceEventRepository) FindMostRecent(ctx context.Context, employeeID string, companyID string) (*attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events ev
		WHERE ev.employee_id = $1 AND ev.company_id = $2
		ORDER BY ev.captured_at DESC, ev.id DESC
		LIMIT 1
	`

	ev, err := scanEvent(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get most recent event: %w", err)
	}

	return &ev, nil
}

// FindMostRecentByType implements attendance.EventRepository.
func (r *attendanceEventRepository) FindMostRecentByType(ctx context.Context, employeeID string, companyID string, eventType attendance.EventType) (*attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events ev
		WHERE ev.employee_id = $1 AND ev.company_id = $2 AND ev.event_type = $3
		ORDER BY ev.captured_at DESC, ev.id DESC
		LIMIT 1
	`

	ev, err := scanEvent(q.QueryRow(ctx, query, employeeID, companyID, eventType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get most recent %s event: %w", eventType, err)
	}

	return &ev, nil
}

// FindRange implements attendance.EventRepository.
func (r *attendanceEventRepository) FindRange(ctx context.Context, employeeID string, companyID string, types []attendance.EventType, from, to time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	typeNames := make([]string, 0, len(types))
	for _, t := range types {
		typeNames = append(typeNames, string(t))
	}

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events ev
		WHERE ev.employee_id = $1
		  AND ev.company_id = $2
		  AND ev.event_type = ANY($3)
		  AND ev.captured_at >= $4
		  AND ev.captured_at <= $5
		ORDER BY ev.captured_at ASC, ev.id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, typeNames, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query event range: %w", err)
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// List implements attendance.EventRepository.
func (r *attendanceEventRepository) List(ctx context.Context, filter attendance.EventFilter, companyID string) ([]attendance.Event, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "ev.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND ev.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.EventType != nil && *filter.EventType != "" {
		baseWhere += fmt.Sprintf(" AND ev.event_type = $%d", argIdx)
		args = append(args, strings.ToUpper(*filter.EventType))
		argIdx++
	}

	// Local day bounds, resolved by the caller
	if filter.CapturedFrom != nil {
		baseWhere += fmt.Sprintf(" AND ev.captured_at >= $%d", argIdx)
		args = append(args, *filter.CapturedFrom)
		argIdx++
	}
	if filter.CapturedBefore != nil {
		baseWhere += fmt.Sprintf(" AND ev.captured_at < $%d", argIdx)
		args = append(args, *filter.CapturedBefore)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendance_events ev WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance events: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name AS employee_name
		FROM attendance_events ev
		LEFT JOIN employees e ON e.id = ev.employee_id
		WHERE %s
		ORDER BY ev.captured_at DESC, ev.id DESC
		LIMIT $%d OFFSET $%d
	`, eventColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 50
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	offset := (page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance events: %w", err)
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		var employeeName *string
		ev, err := scanEvent(rows, &employeeName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		ev.EmployeeName = employeeName
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating attendance event rows: %w", err)
	}

	return events, total, nil
}

// ListOpenSessions implements attendance.EventRepository.
func (r *attendanceEventRepository) ListOpenSessions(ctx context.Context, openedBefore time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM (
			SELECT DISTINCT ON (company_id, employee_id) *
			FROM attendance_events
			WHERE event_type IN ('CLOCK_IN', 'CLOCK_OUT')
			ORDER BY company_id, employee_id, captured_at DESC, id DESC
		) ev
		WHERE ev.event_type = 'CLOCK_IN'
		  AND ev.captured_at < $1
		ORDER BY ev.captured_at ASC
	`

	rows, err := q.Query(ctx, query, openedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		sessions = append(sessions, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open session rows: %w", err)
	}

	return sessions, nil
}
