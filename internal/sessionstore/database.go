package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
)

// touchInterval throttles last_used_at writes.
const touchInterval = time.Minute

// DatabaseStore keeps sessions in the sessions table. Tokens are stored as
// SHA-256 hashes. Sessions slide: once less than half the lifetime remains,
// a resolve pushes expiry a full lifetime ahead.
type DatabaseStore struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	duration time.Duration
	now      Clock
}

// NewDatabaseStore creates a database-backed store.
func NewDatabaseStore(sessions repository.SessionRepository, users repository.UserRepository, duration time.Duration) *DatabaseStore {
	return &DatabaseStore{sessions: sessions, users: users, duration: duration, now: defaultClock}
}

// WithClock replaces the clock. For tests.
func (s *DatabaseStore) WithClock(c Clock) *DatabaseStore {
	s.now = c
	return s
}

// Create issues a new session for userID.
func (s *DatabaseStore) Create(ctx context.Context, userID string, meta Meta) (Session, error) {
	token, hash, err := auth.GenerateBearerToken()
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	row := &models.Session{
		ID:         bunx.NewUUIDv7(),
		UserID:     userID,
		TokenHash:  hash,
		ExpiresAt:  now.Add(s.duration),
		CreatedAt:  now,
		LastUsedAt: now,
		UserAgent:  optional(meta.UserAgent),
		IPAddress:  optional(meta.IPAddress),
	}
	if err := s.sessions.Create(ctx, row); err != nil {
		return Session{}, err
	}
	return Session{Token: token, UserID: userID, ExpiresAt: row.ExpiresAt}, nil
}

// ResolveSession validates token and returns its user.
func (s *DatabaseStore) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	row, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNoSession
		}
		return "", err
	}

	now := s.now()
	if row.Revoked {
		return "", fmt.Errorf("%w: revoked", ErrNoSession)
	}
	if !now.Before(row.ExpiresAt) {
		return "", fmt.Errorf("%w: expired", ErrNoSession)
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: user gone", ErrNoSession)
		}
		return "", err
	}
	if user.Disabled() {
		return "", fmt.Errorf("%w: user disabled", ErrNoSession)
	}

	refresh := row.ExpiresAt.Sub(now) < s.duration/2
	if refresh || now.Sub(row.LastUsedAt) >= touchInterval {
		expires := row.ExpiresAt
		if refresh {
			expires = now.Add(s.duration)
		}
		if err := s.sessions.Touch(ctx, row.ID, now, expires); err != nil {
			return "", err
		}
	}
	return row.UserID, nil
}

// Revoke marks the session revoked.
func (s *DatabaseStore) Revoke(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	row, err := s.sessions.RevokeByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNoSession
		}
		return "", err
	}
	return row.UserID, nil
}

// RevokeUser revokes every live session of userID.
func (s *DatabaseStore) RevokeUser(ctx context.Context, userID string) (int, error) {
	return s.sessions.RevokeByUserID(ctx, userID)
}

// Cleanup deletes expired rows.
func (s *DatabaseStore) Cleanup(ctx context.Context) (int, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
