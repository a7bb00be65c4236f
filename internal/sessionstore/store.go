// Package sessionstore issues and resolves opaque session tokens.
// Three backends share one interface: database rows, redis keys and
// stateless HS256 JWTs.
package sessionstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoSession covers unknown, expired and revoked tokens alike.
	ErrNoSession = errors.New("no session")
	// ErrRevocationUnsupported is returned by backends that cannot revoke
	// sessions server-side.
	ErrRevocationUnsupported = errors.New("session revocation unsupported by this backend")
)

// Session is a freshly issued session. Token is only ever returned here.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Meta describes the client that opened a session.
type Meta struct {
	UserAgent string
	IPAddress string
}

// Store issues and resolves sessions.
type Store interface {
	Create(ctx context.Context, userID string, meta Meta) (Session, error)
	// ResolveSession returns the user behind token, refreshing the session's
	// expiry where the backend supports it.
	ResolveSession(ctx context.Context, token string) (string, error)
	// Revoke ends one session and returns its user.
	Revoke(ctx context.Context, token string) (string, error)
	// RevokeUser ends every session of a user and returns how many ended.
	RevokeUser(ctx context.Context, userID string) (int, error)
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now().UTC() }
