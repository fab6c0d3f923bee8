package employee

import (
	"time"
)

type Employee struct {
	ID           string
	CompanyID    string
	EmployeeCode string
	FullName     string
	Email        *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Card is an NFC credential issued to an employee. UID is unique per company
// among active cards.
type Card struct {
	ID         string
	CompanyID  string
	EmployeeID string
	UID        string
	Label      *string
	IsActive   bool
	LastUsedAt *time.Time
	CreatedAt  time.Time

	// DTO / Join
	EmployeeName *string
}
