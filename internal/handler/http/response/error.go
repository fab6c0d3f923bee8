package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/employee"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/report"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance rejections reaching the error path
	if rej, ok := attendance.AsRejection(err); ok {
		if rej.Kind == attendance.RejectionNotFound {
			NotFound(w, rej.Reason)
			return
		}
		BadRequest(w, rej.Reason, nil)
		return
	}

	switch {
	// User / access errors
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrOverrideAccessRequired):
		Forbidden(w, "Employer or admin access required")
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "Company access required")
	case errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, "Invalid role")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered in this company")
	case errors.Is(err, employee.ErrEmployeeAlreadyActive),
		errors.Is(err, employee.ErrEmployeeAlreadyInactive),
		errors.Is(err, employee.ErrCardAlreadyInactive):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is inactive", nil)
	case errors.Is(err, employee.ErrCardNotFound):
		NotFound(w, "Card not found")
	case errors.Is(err, employee.ErrCardUIDExists):
		Conflict(w, "Card UID already assigned to an active card")

	// Attendance / report errors
	case errors.Is(err, attendance.ErrEventNotFound):
		NotFound(w, "Attendance event not found")
	case errors.Is(err, attendance.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, report.ErrNoDataFound):
		NotFound(w, "No data found for the specified period")
	case errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
