package user

import "errors"

var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrInvalidRole             = errors.New("invalid role")
	ErrOverrideAccessRequired  = errors.New("employer or admin access required")
)
