package types

import "fmt"

// Role is the role an actor holds in an establishment
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleReception  Role = "reception"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleManager,
		RoleTechnician,
		RoleReception,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleManager, RoleTechnician, RoleReception:
		return true
	default:
		return false
	}
}

// CanToggleRoomBlock reports whether the role may block or unblock a room.
func (r Role) CanToggleRoomBlock() bool {
	return r == RoleManager || r == RoleSuperAdmin
}

// CanEditIntervention reports whether the role may edit allow-listed
// intervention fields.
func (r Role) CanEditIntervention() bool {
	return r == RoleManager || r == RoleSuperAdmin || r == RoleReception
}

// CanChangeStatus reports whether the role may move an intervention through
// its lifecycle.
func (r Role) CanChangeStatus() bool {
	return r.IsValid()
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s (allowed: %v)", s, AllRoles())
	}
	return r, nil
}
