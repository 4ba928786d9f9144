package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"publishing-ops-api/apperrors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker guards a named section against concurrent holders. Acquire returns
// a Conflict error when the lock is already held.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

// NoopLocker never blocks.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a SET NX marker for the duration of the section.
type RedisLocker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLocker returns a RedisLocker when client is non-nil and a NoopLocker otherwise.
func NewLocker(client *redis.Client, logger *slog.Logger) Locker {
	if client == nil {
		return NoopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{client: client, logger: logger}
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, name, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", name, err)
	}
	if !ok {
		return nil, apperrors.Conflict(fmt.Sprintf("%s already running", name))
	}

	return func() {
		releaseCtx, cancel := detachedWithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{name}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", slog.String("lock", name), slog.Any("error", err))
		}
	}, nil
}
