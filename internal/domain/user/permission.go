package user

type Permission string

const (
	// Attendance
	PermissionAttendanceTap      Permission = "attendance.tap"
	PermissionAttendanceViewAll  Permission = "attendance.view_all"
	PermissionAttendanceOverride Permission = "attendance.override"

	// Employee Management
	PermissionEmployeeManage Permission = "employee.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployer: {
		// Employer has all permissions
		PermissionAttendanceTap,
		PermissionAttendanceViewAll,
		PermissionAttendanceOverride,
		PermissionEmployeeManage,
		PermissionReportsView,
	},
	RoleAdmin: {
		PermissionAttendanceTap,
		PermissionAttendanceViewAll,
		PermissionAttendanceOverride,
		PermissionEmployeeManage,
		PermissionReportsView,
	},
	RoleEmployee: {
		// Employee can only tap
		PermissionAttendanceTap,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
