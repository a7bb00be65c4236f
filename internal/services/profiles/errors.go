package profiles

import "errors"

// ErrInvalidInput rejects malformed profile edits.
var ErrInvalidInput = errors.New("invalid input")
