package programs

import "errors"

var (
	// ErrNotOwner rejects changes to records owned by someone else.
	ErrNotOwner = errors.New("not the owner")
	// ErrInvalidAnswers is returned when answers fail the form schema.
	ErrInvalidAnswers = errors.New("answers do not satisfy the application form")
	// ErrInvalidSchema is returned for a form schema that does not compile.
	ErrInvalidSchema = errors.New("invalid form schema")
	// ErrNotAccepting is returned when applying to a closed or past-deadline opportunity.
	ErrNotAccepting = errors.New("opportunity is not accepting applications")
	// ErrAlreadyApplied is returned for a second application to one opportunity.
	ErrAlreadyApplied = errors.New("already applied to this opportunity")
	// ErrAlreadyAssigned is returned for a duplicate mentor/mentee pairing.
	ErrAlreadyAssigned = errors.New("mentor already assigned to this mentee")
	// ErrInvalidStatus rejects unknown statuses and disallowed transitions.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidInput rejects malformed requests.
	ErrInvalidInput = errors.New("invalid input")
)
