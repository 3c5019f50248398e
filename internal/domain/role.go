package domain

// Role enumerates the three fixed principal roles. The set is not editable
// at runtime; users carry exactly one role.
type Role string

const (
	RoleManager Role = "MANAGER"
	RoleSupport Role = "SUPPORT"
	RoleUser    Role = "USER"
)

// ParseRole validates a role string.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleManager, RoleSupport, RoleUser:
		return Role(value), true
	}
	return "", false
}

// Assignable reports whether a user with this role may be assigned a ticket.
// Only staff roles qualify; end-users never do.
func (r Role) Assignable() bool {
	return r == RoleManager || r == RoleSupport
}
