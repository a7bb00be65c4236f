package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

// BunSessionRepository implements SessionRepository using Bun ORM
type BunSessionRepository struct {
	db *bun.DB
}

// NewBunSessionRepository creates a new Bun-based session repository
func NewBunSessionRepository(db *bun.DB) *BunSessionRepository {
	return &BunSessionRepository{db: db}
}

// Create inserts a new session
func (r *BunSessionRepository) Create(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastUsedAt.IsZero() {
		session.LastUsedAt = now
	}
	_, err := r.db.NewInsert().
		Model(session).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
// This is the primary lookup on every authenticated request.
func (r *BunSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	session := new(models.Session)
	err := r.db.NewSelect().
		Model(session).
		Where("token_hash = ?", tokenHash).
		Scan(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return session, nil
}

// ListByUserID retrieves all sessions for a user, newest first
func (r *BunSessionRepository) ListByUserID(ctx context.Context, userID string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.NewSelect().
		Model(&sessions).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return sessions, nil
}

// Touch updates last_used_at and expires_at
func (r *BunSessionRepository) Touch(ctx context.Context, id string, lastUsed, expiresAt time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.Session)(nil)).
		Set("last_used_at = ?", lastUsed.UTC()).
		Set("expires_at = ?", expiresAt.UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// RevokeByTokenHash marks the session revoked and returns it
func (r *BunSessionRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	// Load first so the caller learns whose session ended
	session, err := r.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	// Conditional update so concurrent logouts revoke once
	res, err := r.db.NewUpdate().
		Model((*models.Session)(nil)).
		Set("revoked = ?", true).
		Where("id = ?", session.ID).
		Where("revoked = ?", false).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	// already revoked counts as gone
	if err := expectAffected(res, "session", session.ID); err != nil {
		return nil, err
	}
	session.Revoked = true
	return session, nil
}

// RevokeByUserID revokes all live sessions for a user
func (r *BunSessionRepository) RevokeByUserID(ctx context.Context, userID string) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Session)(nil)).
		Set("revoked = ?", true).
		Where("user_id = ?", userID).
		Where("revoked = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteExpired deletes sessions that expired before the given instant
func (r *BunSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.Session)(nil)).
		Where("expires_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
