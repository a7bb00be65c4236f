package programs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
)

// reviewStatuses are the statuses a reviewer may set.
var reviewStatuses = map[string]bool{
	models.ApplicationUnderReview: true,
	models.ApplicationAccepted:    true,
	models.ApplicationRejected:    true,
}

// SubmitApplication files the caller's answers to an open opportunity.
func (s *Service) SubmitApplication(ctx context.Context, caller gate.Principal, opportunityID string, answers map[string]any) (*models.Application, error) {
	o, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !o.AcceptingApplications(s.now()) {
		return nil, fmt.Errorf("opportunity %s: %w", opportunityID, ErrNotAccepting)
	}
	if answers == nil {
		answers = map[string]any{}
	}
	if err := s.validator.Validate(o.FormSchema, answers); err != nil {
		return nil, err
	}

	a := &models.Application{
		ID:            bunx.NewUUIDv7(),
		OpportunityID: o.ID,
		ApplicantID:   caller.UserID,
		Answers:       models.JSONMap(answers),
		Status:        models.ApplicationSubmitted,
	}
	if err := s.applications.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}
	a.Opportunity = o
	s.logger.InfoContext(ctx, "application submitted", "application_id", a.ID, "opportunity_id", o.ID)
	return a, nil
}

// ListMyApplications lists the caller's own applications.
func (s *Service) ListMyApplications(ctx context.Context, caller gate.Principal) ([]models.Application, error) {
	return s.applications.List(ctx, repository.ApplicationFilter{ApplicantID: caller.UserID})
}

// GetMyApplication returns one of the caller's applications.
func (s *Service) GetMyApplication(ctx context.Context, caller gate.Principal, id string) (*models.Application, error) {
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ApplicantID != caller.UserID {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotOwner)
	}
	return a, nil
}

// WithdrawApplication withdraws one of the caller's applications before a
// decision has been made.
func (s *Service) WithdrawApplication(ctx context.Context, caller gate.Principal, id string) (*models.Application, error) {
	a, err := s.GetMyApplication(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case models.ApplicationSubmitted, models.ApplicationUnderReview:
	default:
		return nil, fmt.Errorf("%w: cannot withdraw a %s application", ErrInvalidStatus, a.Status)
	}
	if err := s.applications.UpdateStatus(ctx, id, models.ApplicationWithdrawn, a.ReviewNotes); err != nil {
		return nil, err
	}
	a.Status = models.ApplicationWithdrawn
	return a, nil
}

// ReviewFilter narrows the applications a reviewer sees.
type ReviewFilter struct {
	OpportunityID string
	Status        string
}

// ListReviewableApplications lists applications to opportunities the caller
// owns, or all applications for admins.
func (s *Service) ListReviewableApplications(ctx context.Context, caller gate.Principal, f ReviewFilter) ([]models.Application, error) {
	filter := repository.ApplicationFilter{OpportunityID: f.OpportunityID, Status: f.Status}
	if !isAdmin(caller) {
		filter.PartnerID = caller.UserID
	}
	return s.applications.List(ctx, filter)
}

// ReviewApplication sets the status and notes of an application to an
// opportunity the caller owns.
func (s *Service) ReviewApplication(ctx context.Context, caller gate.Principal, id, status, notes string) (*models.Application, error) {
	status = strings.TrimSpace(status)
	if !reviewStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Opportunity == nil {
		return nil, fmt.Errorf("application %s: %w", id, repository.ErrNotFound)
	}
	if !isAdmin(caller) && a.Opportunity.PartnerID != caller.UserID {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotOwner)
	}
	if a.Status == models.ApplicationWithdrawn {
		return nil, fmt.Errorf("%w: application was withdrawn", ErrInvalidStatus)
	}
	if err := s.applications.UpdateStatus(ctx, id, status, notes); err != nil {
		return nil, err
	}
	a.Status, a.ReviewNotes = status, notes
	s.logger.InfoContext(ctx, "application reviewed", "application_id", id, "status", status, "by", caller.UserID)
	return a, nil
}
