package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

// BunMentorshipRepository implements MentorshipRepository using Bun ORM
type BunMentorshipRepository struct {
	db *bun.DB
}

// NewBunMentorshipRepository creates a new Bun-based mentorship repository
func NewBunMentorshipRepository(db *bun.DB) *BunMentorshipRepository {
	return &BunMentorshipRepository{db: db}
}

// Create inserts an assignment; a duplicate mentor/mentee pair yields ErrConflict.
func (r *BunMentorshipRepository) Create(ctx context.Context, m *models.MentorshipAssignment) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create mentorship: %w", ErrConflict)
		}
		return fmt.Errorf("create mentorship: %w", err)
	}
	return nil
}

// GetByID retrieves an assignment
func (r *BunMentorshipRepository) GetByID(ctx context.Context, id string) (*models.MentorshipAssignment, error) {
	m := new(models.MentorshipAssignment)
	err := r.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("mentorship %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get mentorship: %w", err)
	}
	return m, nil
}

// List retrieves assignments, newest first
func (r *BunMentorshipRepository) List(ctx context.Context, filter MentorshipFilter) ([]models.MentorshipAssignment, error) {
	var out []models.MentorshipAssignment
	q := r.db.NewSelect().Model(&out).Order("created_at DESC")
	if filter.MentorID != "" {
		q = q.Where("mentor_id = ?", filter.MentorID)
	}
	if filter.MenteeID != "" {
		q = q.Where("mentee_id = ?", filter.MenteeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list mentorships: %w", err)
	}
	return out, nil
}

// Update sets status and notes
func (r *BunMentorshipRepository) Update(ctx context.Context, id, status, notes string) error {
	res, err := r.db.NewUpdate().
		Model((*models.MentorshipAssignment)(nil)).
		Set("status = ?", status).
		Set("notes = ?", notes).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update mentorship: %w", err)
	}
	return expectAffected(res, "mentorship", id)
}
