package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks live session ids so sessions can be revoked before
// their token expires.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// NoopSessionStore treats every signed session as active; logout only
// clears the cookie.
type NoopSessionStore struct{}

func (NoopSessionStore) Save(context.Context, string, uint, time.Duration) error { return nil }
func (NoopSessionStore) Active(context.Context, string) (bool, error) { return true, nil }
func (NoopSessionStore) Revoke(context.Context, string) error { return nil }

// RedisSessionStore keeps one key per session with the session TTL.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "session:"}
}

// NewSessionStore returns a Redis-backed store when client is non-nil.
func NewSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return NoopSessionStore{}
	}
	return NewRedisSessionStore(client)
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	return s.client.Set(ctx, s.prefix+sessionID, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisSessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n == 1, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
