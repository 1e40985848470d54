package enums

import (
	"fmt"
	"strings"
)

// UserRole identifies the access level carried by a session token.
type UserRole string

const (
	UserRoleCustomer   UserRole = "customer"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "superadmin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleCustomer, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	}
	return false
}

// IsElevated reports whether the role may use the admin surface.
func (r UserRole) IsElevated() bool {
	return r == UserRoleAdmin || r == UserRoleSuperAdmin
}

func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return role, nil
}
