package programs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
)

// OpportunityInput carries the editable fields of an opportunity.
type OpportunityInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	FormSchema  map[string]any `json:"form_schema,omitempty"`
}

func (in OpportunityInput) validate(v *FormValidator) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return v.Check(in.FormSchema)
}

// ListOpportunities lists opportunities visible to a partner or admin:
// partners see their own, admins see all.
func (s *Service) ListOpportunities(ctx context.Context, caller gate.Principal, status string) ([]models.Opportunity, error) {
	filter := repository.OpportunityFilter{Status: status}
	if !isAdmin(caller) {
		filter.PartnerID = caller.UserID
	}
	return s.opportunities.List(ctx, filter)
}

// ListOpenOpportunities lists opportunities that currently accept
// applications.
func (s *Service) ListOpenOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	all, err := s.opportunities.List(ctx, repository.OpportunityFilter{Status: models.OpportunityOpen})
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := all[:0]
	for _, o := range all {
		if o.AcceptingApplications(now) {
			out = append(out, o)
		}
	}
	return out, nil
}

// OpenOpportunity returns an opportunity that currently accepts
// applications. Others read as not found.
func (s *Service) OpenOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	o, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.AcceptingApplications(s.now()) {
		return nil, fmt.Errorf("opportunity %s: %w", id, repository.ErrNotFound)
	}
	return o, nil
}

// CreateOpportunity posts a new open opportunity owned by the caller.
func (s *Service) CreateOpportunity(ctx context.Context, caller gate.Principal, in OpportunityInput) (*models.Opportunity, error) {
	if err := in.validate(s.validator); err != nil {
		return nil, err
	}
	o := &models.Opportunity{
		ID:        bunx.NewUUIDv7(),
		PartnerID: caller.UserID,
		Status:    models.OpportunityOpen,
	}
	apply(o, in)
	if err := s.opportunities.Create(ctx, o); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "opportunity created", "opportunity_id", o.ID, "partner_id", o.PartnerID)
	return o, nil
}

// GetOpportunity returns an opportunity the caller owns (any, for admins).
func (s *Service) GetOpportunity(ctx context.Context, caller gate.Principal, id string) (*models.Opportunity, error) {
	return s.owned(ctx, caller, id)
}

// UpdateOpportunity replaces the editable fields.
func (s *Service) UpdateOpportunity(ctx context.Context, caller gate.Principal, id string, in OpportunityInput) (*models.Opportunity, error) {
	if err := in.validate(s.validator); err != nil {
		return nil, err
	}
	o, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	apply(o, in)
	if err := s.opportunities.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// CloseOpportunity stops accepting applications.
func (s *Service) CloseOpportunity(ctx context.Context, caller gate.Principal, id string) (*models.Opportunity, error) {
	o, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if o.Status == models.OpportunityClosed {
		return o, nil
	}
	o.Status = models.OpportunityClosed
	if err := s.opportunities.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOpportunity removes an opportunity and, by cascade, its applications.
func (s *Service) DeleteOpportunity(ctx context.Context, caller gate.Principal, id string) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.opportunities.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "opportunity deleted", "opportunity_id", id, "by", caller.UserID)
	return nil
}

func (s *Service) owned(ctx context.Context, caller gate.Principal, id string) (*models.Opportunity, error) {
	o, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(caller) && o.PartnerID != caller.UserID {
		return nil, fmt.Errorf("opportunity %s: %w", id, ErrNotOwner)
	}
	return o, nil
}

func apply(o *models.Opportunity, in OpportunityInput) {
	o.Title = strings.TrimSpace(in.Title)
	o.Description = in.Description
	o.Category = strings.TrimSpace(in.Category)
	o.Deadline = in.Deadline
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		o.Deadline = &d
	}
	o.FormSchema = models.JSONMap(in.FormSchema)
}
