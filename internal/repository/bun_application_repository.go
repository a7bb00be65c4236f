package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

// BunApplicationRepository implements ApplicationRepository using Bun ORM
type BunApplicationRepository struct {
	db *bun.DB
}

// NewBunApplicationRepository creates a new Bun-based application repository
func NewBunApplicationRepository(db *bun.DB) *BunApplicationRepository {
	return &BunApplicationRepository{db: db}
}

// Create inserts an application; a second application by the same applicant
// to the same opportunity yields ErrConflict.
func (r *BunApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Answers == nil {
		a.Answers = models.JSONMap{}
	}
	if _, err := r.db.NewInsert().Model(a).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create application: %w", ErrConflict)
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetByID retrieves an application with its opportunity
func (r *BunApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	a := new(models.Application)
	err := r.db.NewSelect().
		Model(a).
		Relation("Opportunity").
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// List retrieves applications with their opportunity, newest first
func (r *BunApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, error) {
	var out []models.Application
	q := r.db.NewSelect().
		Model(&out).
		Relation("Opportunity").
		Order("a.created_at DESC")
	if filter.ApplicantID != "" {
		q = q.Where("a.applicant_id = ?", filter.ApplicantID)
	}
	if filter.OpportunityID != "" {
		q = q.Where("a.opportunity_id = ?", filter.OpportunityID)
	}
	// Partners see applications to their own opportunities only
	if filter.PartnerID != "" {
		q = q.Where("opportunity.partner_id = ?", filter.PartnerID)
	}
	if filter.Status != "" {
		q = q.Where("a.status = ?", filter.Status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

// UpdateStatus sets the review status and notes
func (r *BunApplicationRepository) UpdateStatus(ctx context.Context, id, status, notes string) error {
	res, err := r.db.NewUpdate().
		Model((*models.Application)(nil)).
		Set("status = ?", status).
		Set("review_notes = ?", notes).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return expectAffected(res, "application", id)
}
