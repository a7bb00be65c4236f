package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

// BunProfileRepository implements ProfileRepository using Bun ORM
type BunProfileRepository struct {
	db *bun.DB
}

// NewBunProfileRepository creates a new Bun-based profile repository
func NewBunProfileRepository(db *bun.DB) *BunProfileRepository {
	return &BunProfileRepository{db: db}
}

// GetByUserID retrieves a profile with its user
func (r *BunProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile := new(models.Profile)
	err := r.db.NewSelect().
		Model(profile).
		Relation("User").
		Where("p.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// GetRole reads only the role column for a user.
// The gate calls this on every request that misses the role cache.
func (r *BunProfileRepository) GetRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := r.db.NewSelect().
		Model((*models.Profile)(nil)).
		Column("role").
		Where("user_id = ?", userID).
		Scan(ctx, &role)
	if err != nil {
		if notFound(err) {
			return "", fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return "", fmt.Errorf("get profile role: %w", err)
	}
	return role, nil
}

// List retrieves profiles ordered by creation
func (r *BunProfileRepository) List(ctx context.Context, filter ProfileFilter) ([]models.Profile, error) {
	var profiles []models.Profile
	q := r.db.NewSelect().
		Model(&profiles).
		Relation("User").
		Order("p.created_at ASC")
	if filter.Role != "" {
		q = q.Where("p.role = ?", filter.Role)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateDetails replaces the display name and attributes
func (r *BunProfileRepository) UpdateDetails(ctx context.Context, userID, fullName string, attributes models.JSONMap) (*models.Profile, error) {
	if attributes == nil {
		attributes = models.JSONMap{}
	}
	res, err := r.db.NewUpdate().
		Model((*models.Profile)(nil)).
		Set("full_name = ?", fullName).
		Set("attributes = ?", attributes).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := expectAffected(res, "profile", userID); err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// UpdateRole sets a user's role
func (r *BunProfileRepository) UpdateRole(ctx context.Context, userID, role string) error {
	res, err := r.db.NewUpdate().
		Model((*models.Profile)(nil)).
		Set("role = ?", role).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return expectAffected(res, "profile", userID)
}
