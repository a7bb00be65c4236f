package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

// BunOpportunityRepository implements OpportunityRepository using Bun ORM
type BunOpportunityRepository struct {
	db *bun.DB
}

// NewBunOpportunityRepository creates a new Bun-based opportunity repository
func NewBunOpportunityRepository(db *bun.DB) *BunOpportunityRepository {
	return &BunOpportunityRepository{db: db}
}

// Create inserts a new opportunity
func (r *BunOpportunityRepository) Create(ctx context.Context, o *models.Opportunity) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.FormSchema == nil {
		o.FormSchema = models.JSONMap{}
	}
	if _, err := r.db.NewInsert().Model(o).Exec(ctx); err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	return nil
}

// GetByID retrieves an opportunity
func (r *BunOpportunityRepository) GetByID(ctx context.Context, id string) (*models.Opportunity, error) {
	o := new(models.Opportunity)
	err := r.db.NewSelect().Model(o).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return o, nil
}

// List retrieves opportunities, newest first
func (r *BunOpportunityRepository) List(ctx context.Context, filter OpportunityFilter) ([]models.Opportunity, error) {
	var out []models.Opportunity
	q := r.db.NewSelect().Model(&out).Order("created_at DESC")
	if filter.PartnerID != "" {
		q = q.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return out, nil
}

// Update writes the mutable columns of an opportunity
func (r *BunOpportunityRepository) Update(ctx context.Context, o *models.Opportunity) error {
	o.UpdatedAt = time.Now().UTC()
	if o.FormSchema == nil {
		o.FormSchema = models.JSONMap{}
	}
	res, err := r.db.NewUpdate().
		Model(o).
		Column("title", "description", "category", "status", "deadline", "form_schema", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}
	return expectAffected(res, "opportunity", o.ID)
}

// Delete removes an opportunity and, by cascade, its applications
func (r *BunOpportunityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Opportunity)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}
	return expectAffected(res, "opportunity", id)
}
