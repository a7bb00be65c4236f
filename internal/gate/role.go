package gate

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a profile may carry.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleMentor    Role = "mentor"
	RolePartner   Role = "partner"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleApplicant, RoleMentor, RolePartner, RoleAdmin}

var roleHomes = map[Role]string{
	RoleApplicant: "/dashboard",
	RoleMentor:    "/mentor/dashboard",
	RolePartner:   "/partner/dashboard",
	RoleAdmin:     "/admin/dashboard",
}

// ParseRole validates s against the closed role set. Matching is exact after
// trimming; "Admin" is not a role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleHomes[r]
	return ok
}

// Home returns the landing page for r, or "/login" for an invalid role.
func (r Role) Home() string {
	if home, ok := roleHomes[r]; ok {
		return home
	}
	return LoginPath
}

func (r Role) String() string { return string(r) }
