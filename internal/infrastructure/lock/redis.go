package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"easysign/internal/infrastructure/redis"
)

const lockKeyPrefix = "easysign:lock:"

// releaseScript deletes the lock only if it is still held by the caller's token
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every instance connected to the same Redis
type RedisLocker struct {
	redis  *redis.RedisClient
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client *redis.RedisClient, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		redis:  client,
		ttl:    ttl,
		wait:   wait,
		retry:  50 * time.Millisecond,
		logger: logger,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	for {
		ok, err := l.redis.SetNX(ctx, redisKey, token, l.ttl)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, ErrLockTimeout
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must not depend on the caller's context being alive
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := l.redis.RunScript(releaseCtx, releaseScript, []string{redisKey}, token); err != nil {
				l.logger.Warn("Failed to release lock",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		})
	}, nil
}
