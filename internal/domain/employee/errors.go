package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmployeeCodeExists      = errors.New("employee code already exists")
	ErrEmailExists             = errors.New("email already registered in this company")
	ErrInvalidEmployeeCode     = errors.New("invalid employee code format")
	ErrEmployeeAlreadyActive   = errors.New("employee is already active")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrEmployeeInactive        = errors.New("employee is inactive")

	ErrCardNotFound        = errors.New("card not found")
	ErrCardUIDExists       = errors.New("card uid already assigned to an active card")
	ErrCardAlreadyInactive = errors.New("card is already inactive")
)
