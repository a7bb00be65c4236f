package gate

import "errors"

var (
	// ErrUnauthenticated means no valid session could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrProfileMissing means the session is valid but no usable profile exists.
	// It is handled exactly like ErrUnauthenticated.
	ErrProfileMissing = errors.New("profile missing")
	// ErrForbidden means the caller's role is not permitted on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidOperation rejects a mutation that would break a role invariant,
	// such as an admin demoting themself.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidRole rejects strings outside the role set.
	ErrInvalidRole = errors.New("invalid role")
)

// IsUnauthenticated reports whether err should send the caller to login.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrProfileMissing)
}
