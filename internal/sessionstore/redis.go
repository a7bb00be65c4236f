package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "foundation:session:"
	userSessionKeyPrefix = "foundation:user_sessions:"
)

// revokeScript deletes a session key and drops it from the user's index.
// KEYS[1] session key, ARGV[1] user-index key prefix. Returns the user id or false.
var revokeScript = redis.NewScript(`
local user = redis.call("GET", KEYS[1])
if not user then
  return false
end
redis.call("DEL", KEYS[1])
redis.call("SREM", ARGV[1] .. user, KEYS[1])
return user
`)

// revokeUserScript deletes every session listed in a user's index.
var revokeUserScript = redis.NewScript(`
local keys = redis.call("SMEMBERS", KEYS[1])
local n = 0
for _, k in ipairs(keys) do
  n = n + redis.call("DEL", k)
end
redis.call("DEL", KEYS[1])
return n
`)

// RedisStore keeps sessions as redis keys holding the user id, with a TTL
// that is re-armed on every resolve.
type RedisStore struct {
	client   redis.UniversalClient
	duration time.Duration
	now      Clock
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(client redis.UniversalClient, duration time.Duration) *RedisStore {
	return &RedisStore{client: client, duration: duration, now: defaultClock}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + auth.HashToken(token)
}

func userKey(userID string) string {
	return userSessionKeyPrefix + userID
}

// Create issues a new session for userID.
func (s *RedisStore) Create(ctx context.Context, userID string, _ Meta) (Session, error) {
	token, _, err := auth.GenerateBearerToken()
	if err != nil {
		return Session{}, err
	}
	key := sessionKey(token)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, userID, s.duration)
	pipe.SAdd(ctx, userKey(userID), key)
	pipe.Expire(ctx, userKey(userID), s.duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return Session{}, fmt.Errorf("create redis session: %w", err)
	}
	return Session{Token: token, UserID: userID, ExpiresAt: s.now().Add(s.duration)}, nil
}

// ResolveSession returns the user behind token and re-arms the TTL.
func (s *RedisStore) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	userID, err := s.client.GetEx(ctx, sessionKey(token), s.duration).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("resolve redis session: %w", err)
	}
	// the index must outlive its newest member
	if err := s.client.Expire(ctx, userKey(userID), s.duration).Err(); err != nil {
		return "", fmt.Errorf("refresh redis session index: %w", err)
	}
	return userID, nil
}

// Revoke deletes the session.
func (s *RedisStore) Revoke(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	userID, err := revokeScript.Run(ctx, s.client, []string{sessionKey(token)}, userSessionKeyPrefix).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("revoke redis session: %w", err)
	}
	return userID, nil
}

// RevokeUser deletes every session of userID.
func (s *RedisStore) RevokeUser(ctx context.Context, userID string) (int, error) {
	n, err := revokeUserScript.Run(ctx, s.client, []string{userKey(userID)}).Int()
	if err != nil {
		return 0, fmt.Errorf("revoke redis user sessions: %w", err)
	}
	return n, nil
}
