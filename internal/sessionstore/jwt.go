package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

// TokenClaims is the subset of access-token claims the portal reads.
type TokenClaims struct {
	Subject   string `mapstructure:"sub"`
	SessionID string `mapstructure:"jti"`
	Email     string `mapstructure:"email"`
}

// JWTStore issues HS256 access tokens and keeps no session rows. Tokens stay
// valid until they expire unless their user is disabled or removed. Revoke
// only confirms the token and RevokeUser is unsupported.
type JWTStore struct {
	users    repository.UserRepository
	secret   []byte
	issuer   string
	audience string
	duration time.Duration
	now      Clock
}

// NewJWTStore creates a stateless store. secret must be at least 32 bytes.
func NewJWTStore(users repository.UserRepository, secret, issuer, audience string, duration time.Duration) (*JWTStore, error) {
	if users == nil {
		return nil, errors.New("jwt store needs a user repository")
	}
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	return &JWTStore{
		users:    users,
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		duration: duration,
		now:      defaultClock,
	}, nil
}

// WithClock replaces the clock used for issuing and validating. For tests.
func (s *JWTStore) WithClock(c Clock) *JWTStore {
	s.now = c
	return s
}

// Create signs a new access token for userID.
func (s *JWTStore) Create(_ context.Context, userID string, _ Meta) (Session, error) {
	now := s.now()
	expires := now.Add(s.duration)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        bunx.NewUUIDv7(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return Session{Token: signed, UserID: userID, ExpiresAt: expires}, nil
}

// Claims verifies token and decodes its claims.
func (s *JWTStore) Claims(token string) (TokenClaims, error) {
	if token == "" {
		return TokenClaims{}, ErrNoSession
	}
	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, fmt.Errorf("%w: unexpected claims type", ErrNoSession)
	}

	var out TokenClaims
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return TokenClaims{}, fmt.Errorf("decode claims: %w", err)
	}
	if err := decoder.Decode(map[string]any(mapClaims)); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: decode claims: %w", ErrNoSession, err)
	}
	if out.Subject == "" {
		return TokenClaims{}, fmt.Errorf("%w: token has no subject", ErrNoSession)
	}
	return out, nil
}

// ResolveSession verifies token and returns its subject, provided the
// subject still exists and is not disabled.
func (s *JWTStore) ResolveSession(ctx context.Context, token string) (string, error) {
	claims, err := s.Claims(token)
	if err != nil {
		return "", err
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: user gone", ErrNoSession)
		}
		return "", err
	}
	if user.Disabled() {
		return "", fmt.Errorf("%w: user disabled", ErrNoSession)
	}
	return claims.Subject, nil
}

// Revoke verifies the token and returns its subject. The token itself
// remains valid until expiry.
func (s *JWTStore) Revoke(_ context.Context, token string) (string, error) {
	claims, err := s.Claims(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// RevokeUser is not possible without server-side state.
func (s *JWTStore) RevokeUser(context.Context, string) (int, error) {
	return 0, ErrRevocationUnsupported
}
