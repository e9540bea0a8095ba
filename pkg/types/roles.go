package types

import "fmt"

// Role is the closed set of principals known to every service. The professor
// service and the auth service authorize against the same enumeration; adding
// a role here is the only supported way to introduce one.
type Role string

const (
	// RoleAdmin may act on any professor record.
	RoleAdmin Role = "ADMIN"

	// RoleProfessor may only act on its own record.
	RoleProfessor Role = "PROFESSOR"

	// RoleAuthService is the internal caller identity used by the auth
	// service to read full records (password hash included) during login.
	// It is never issued to end users.
	RoleAuthService Role = "AUTH_SERVICE"
)

// Valid reports whether r is a member of the known role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleAuthService:
		return true
	}
	return false
}

// Privileged reports whether r bypasses ownership checks.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleAuthService
}

// ParseRole converts a string claim value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
