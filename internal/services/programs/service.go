// Package programs runs the foundation's programs: partner opportunities,
// applications to them and mentor assignments.
package programs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
)

// Deps collects the collaborators of Service.
type Deps struct {
	Opportunities repository.OpportunityRepository
	Applications  repository.ApplicationRepository
	Mentorships   repository.MentorshipRepository
	// Roles checks the roles of users named in mentor assignments.
	Roles     gate.ProfileReader
	Validator *FormValidator
	Logger    *slog.Logger
}

// Service implements program operations. Every method takes the caller's
// principal; area access has already been enforced by the gate, so checks
// here are about ownership.
type Service struct {
	opportunities repository.OpportunityRepository
	applications  repository.ApplicationRepository
	mentorships   repository.MentorshipRepository
	roles         gate.ProfileReader
	validator     *FormValidator
	logger        *slog.Logger
	now           func() time.Time
}

// NewService creates the programs service.
func NewService(d Deps) (*Service, error) {
	if d.Opportunities == nil || d.Applications == nil || d.Mentorships == nil || d.Roles == nil {
		return nil, fmt.Errorf("programs: repositories and role reader are required")
	}
	v := d.Validator
	if v == nil {
		var err error
		if v, err = NewFormValidator(0); err != nil {
			return nil, err
		}
	}
	return &Service{
		opportunities: d.Opportunities,
		applications:  d.Applications,
		mentorships:   d.Mentorships,
		roles:         d.Roles,
		validator:     v,
		logger:        logging.Resolve(d.Logger),
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

func isAdmin(p gate.Principal) bool { return p.Role == gate.RoleAdmin }
