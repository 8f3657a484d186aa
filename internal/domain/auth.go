package domain

// Role is the flat authorization role carried by every profile.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSales   Role = "sales"
	RoleSupport Role = "support"
	RoleClient  Role = "client"
)

// IsStaff reports whether the role belongs to the internal team.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleSupport:
		return true
	default:
		return false
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClient || r.IsStaff()
}

// Profile is the identity-provider user record.
type Profile struct {
	ID       string
	FullName string
	Email    string
	Role     Role
}
