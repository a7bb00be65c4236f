package gate

import "fmt"

// RoleChange is a request by Acting to set Target's role to NewRole.
type RoleChange struct {
	ActingUserID string
	ActingRole   Role
	TargetUserID string
	NewRole      Role
}

// Check validates the change against the role invariants:
//   - NewRole must be a valid role;
//   - only admins change roles;
//   - an admin cannot demote themself.
//
// noop is true for an admin setting their own role to admin, which succeeds
// without touching storage.
func (c RoleChange) Check() (noop bool, err error) {
	if !c.NewRole.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidRole, c.NewRole)
	}
	if c.ActingRole != RoleAdmin {
		return false, fmt.Errorf("%w: only admins may change roles", ErrForbidden)
	}
	if c.ActingUserID == c.TargetUserID {
		if c.NewRole != RoleAdmin {
			return false, fmt.Errorf("%w: admins cannot remove their own admin role", ErrInvalidOperation)
		}
		return true, nil
	}
	return false, nil
}
