package user

type Role string

const (
	RoleEmployer Role = "employer" // Company owner - full access
	RoleAdmin    Role = "admin"    // Runs attendance on the employer's behalf
	RoleEmployee Role = "employee" // Taps in and out
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployer, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// Actor is the authenticated caller of a request. Identity comes from a
// verified access token; this service never issues sessions itself.
type Actor struct {
	UserID    string
	CompanyID string
	Role      Role

	// EmployeeID is set when the caller is linked to an employee record
	EmployeeID *string
}

// IsEmployer checks if actor is the company owner
func (a Actor) IsEmployer() bool {
	return a.Role == RoleEmployer
}

// CanOverride checks if actor may change attendance on behalf of employees
func (a Actor) CanOverride() bool {
	return a.Role == RoleEmployer || a.Role == RoleAdmin
}

func (a Actor) Can(permission Permission) bool {
	return HasPermission(a.Role, permission)
}

