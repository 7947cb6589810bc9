package auth

const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleHR         = "hr"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
)

var AllRoles = []string{
	RoleSuperAdmin,
	RoleAdmin,
	RoleHR,
	RoleManager,
	RoleEmployee,
}

func ValidRole(name string) bool {
	for _, role := range AllRoles {
		if role == name {
			return true
		}
	}
	return false
}

// Privileged reports whether the role may manage records for the whole company.
func Privileged(role string) bool {
	return role == RoleAdmin || role == RoleHR || role == RoleSuperAdmin
}
