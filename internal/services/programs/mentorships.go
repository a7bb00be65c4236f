package programs

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
)

var mentorshipStatuses = map[string]bool{
	models.MentorshipActive:    true,
	models.MentorshipPaused:    true,
	models.MentorshipCompleted: true,
}

// AssignMentor pairs a mentor with an applicant. Admin only.
func (s *Service) AssignMentor(ctx context.Context, caller gate.Principal, mentorID, menteeID, notes string) (*models.MentorshipAssignment, error) {
	if !isAdmin(caller) {
		return nil, fmt.Errorf("%w: only admins assign mentors", gate.ErrForbidden)
	}
	if mentorID == "" || menteeID == "" || mentorID == menteeID {
		return nil, fmt.Errorf("%w: distinct mentor and mentee are required", ErrInvalidInput)
	}
	if err := s.requireRole(ctx, mentorID, gate.RoleMentor); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, menteeID, gate.RoleApplicant); err != nil {
		return nil, err
	}

	m := &models.MentorshipAssignment{
		ID:       bunx.NewUUIDv7(),
		MentorID: mentorID,
		MenteeID: menteeID,
		Status:   models.MentorshipActive,
		Notes:    notes,
	}
	if err := s.mentorships.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyAssigned
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "mentor assigned", "mentorship_id", m.ID, "mentor_id", mentorID, "mentee_id", menteeID)
	return m, nil
}

// ListMentorships lists the caller's assignments, or all of them for admins.
func (s *Service) ListMentorships(ctx context.Context, caller gate.Principal, status string) ([]models.MentorshipAssignment, error) {
	filter := repository.MentorshipFilter{Status: status}
	if !isAdmin(caller) {
		filter.MentorID = caller.UserID
	}
	return s.mentorships.List(ctx, filter)
}

// UpdateMentorship changes the status and notes of an assignment the caller
// mentors.
func (s *Service) UpdateMentorship(ctx context.Context, caller gate.Principal, id, status, notes string) (*models.MentorshipAssignment, error) {
	m, err := s.mentorships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(caller) && m.MentorID != caller.UserID {
		return nil, fmt.Errorf("mentorship %s: %w", id, ErrNotOwner)
	}
	if status == "" {
		status = m.Status
	}
	if !mentorshipStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.mentorships.Update(ctx, id, status, notes); err != nil {
		return nil, err
	}
	m.Status, m.Notes = status, notes
	return m, nil
}

func (s *Service) requireRole(ctx context.Context, userID string, want gate.Role) error {
	role, err := s.roles.GetProfileRole(ctx, userID)
	if err != nil {
		return err
	}
	if role != want {
		return fmt.Errorf("%w: user %s is %s, not %s", ErrInvalidInput, userID, role, want)
	}
	return nil
}
