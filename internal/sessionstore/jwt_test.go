package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTStore_ShortSecret(t *testing.T) {
	_, users, _, _ := setupDatabaseStore(t)
	_, err := NewJWTStore(users, "short", "foundation", "authenticated", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTStore(nil, testSecret, "foundation", "authenticated", time.Hour)
	assert.Error(t, err)
}

func TestJWTStore_RoundTrip(t *testing.T) {
	_, users, _, _ := setupDatabaseStore(t)
	userID := seedUser(t, users)
	clock := &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
	store, err := NewJWTStore(users, testSecret, "foundation", "authenticated", time.Hour)
	require.NoError(t, err)
	store.WithClock(clock.now)
	ctx := context.Background()

	sess, err := store.Create(ctx, userID, Meta{})
	require.NoError(t, err)

	got, err := store.ResolveSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	claims, err := store.Claims(sess.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.SessionID)

	got, err = store.Revoke(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = store.RevokeUser(ctx, userID)
	assert.ErrorIs(t, err, ErrRevocationUnsupported)

	clock.advance(2 * time.Hour)
	_, err = store.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestJWTStore_RejectsDisabledAndMissingUsers(t *testing.T) {
	_, users, _, _ := setupDatabaseStore(t)
	userID := seedUser(t, users)
	store, err := NewJWTStore(users, testSecret, "foundation", "authenticated", time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	sess, err := store.Create(ctx, userID, Meta{})
	require.NoError(t, err)
	require.NoError(t, users.SetDisabled(ctx, userID, true))

	_, err = store.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	// logout of a disabled account still succeeds
	got, err := store.Revoke(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	require.NoError(t, users.SetDisabled(ctx, userID, false))
	_, err = store.ResolveSession(ctx, sess.Token)
	require.NoError(t, err)

	orphan, err := store.Create(ctx, "no-such-user", Meta{})
	require.NoError(t, err)
	_, err = store.ResolveSession(ctx, orphan.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestJWTStore_RejectsForeignTokens(t *testing.T) {
	_, users, _, _ := setupDatabaseStore(t)
	userID := seedUser(t, users)
	store, err := NewJWTStore(users, testSecret, "foundation", "authenticated", time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	now := time.Now()
	valid := jwt.MapClaims{
		"sub": userID, "iss": "foundation", "aud": "authenticated",
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	}
	with := func(k string, v any) jwt.MapClaims {
		c := jwt.MapClaims{}
		for key, val := range valid {
			c[key] = val
		}
		if v == nil {
			delete(c, k)
		} else {
			c[k] = v
		}
		return c
	}

	tests := map[string]string{
		"wrong secret":   sign(jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), valid),
		"wrong issuer":   sign(jwt.SigningMethodHS256, []byte(testSecret), with("iss", "someone-else")),
		"wrong audience": sign(jwt.SigningMethodHS256, []byte(testSecret), with("aud", "anon")),
		"no expiry":      sign(jwt.SigningMethodHS256, []byte(testSecret), with("exp", nil)),
		"no subject":     sign(jwt.SigningMethodHS256, []byte(testSecret), with("sub", nil)),
		"hs512":          sign(jwt.SigningMethodHS512, []byte(testSecret), valid),
		"garbage":        "not.a.jwt",
		"empty":          "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := store.ResolveSession(ctx, tok)
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}

	// a well-formed foreign token with our secret works, e.g. one minted by an upstream provider
	got, err := store.ResolveSession(ctx, sign(jwt.SigningMethodHS256, []byte(testSecret), valid))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
