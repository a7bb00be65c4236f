package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// CreateWithProfile inserts the user and its profile in one transaction.
func (r *BunUserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	// Emails are unique case-insensitively
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	profile.UserID = user.ID
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if profile.Attributes == nil {
		profile.Attributes = models.JSONMap{}
	}

	// A user never exists without a profile; the gate reads role from it
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(profile).Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", user.Email, ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *BunUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// GetBySubject retrieves a user by their SSO subject
func (r *BunUserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	return r.getBy(ctx, "subject", subject)
}

func (r *BunUserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("? = ?", bun.Ident(column), value).
		Scan(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("user %s=%s: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return user, nil
}

// LinkSubject attaches an SSO subject to an existing account
func (r *BunUserRepository) LinkSubject(ctx context.Context, id, subject string) error {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("subject = ?", subject).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("link subject: %w", ErrConflict)
		}
		return fmt.Errorf("link subject: %w", err)
	}
	return expectAffected(res, "user", id)
}

// UpdateLastLogin stamps the last successful login
func (r *BunUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_login_at = ?", at.UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// SetDisabled switches an account off or back on
func (r *BunUserRepository) SetDisabled(ctx context.Context, id string, disabled bool) error {
	q := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	// disabled_at doubles as the flag and the audit timestamp
	if disabled {
		q = q.Set("disabled_at = ?", time.Now().UTC())
	} else {
		q = q.Set("disabled_at = NULL")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("set disabled: %w", err)
	}
	return expectAffected(res, "user", id)
}
