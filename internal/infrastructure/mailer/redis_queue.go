package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"easysign/internal/infrastructure/redis"
)

const outboxKey = "easysign:mail:outbox"

type redisQueue struct {
	redis *redis.RedisClient
}

func (q *redisQueue) push(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail: %w", err)
	}
	if err := q.redis.Push(ctx, outboxKey, payload); err != nil {
		return fmt.Errorf("failed to push mail to outbox: %w", err)
	}
	return nil
}

func (q *redisQueue) pop(ctx context.Context, timeout time.Duration) (Message, bool, error) {
	payload, err := q.redis.BlockingPop(ctx, timeout, outboxKey)
	if errors.Is(err, goredis.Nil) {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, err
	}

	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return Message{}, false, fmt.Errorf("failed to unmarshal mail: %w", err)
	}
	return msg, true, nil
}

// NewRedisDispatcher keeps queued mail in a Redis list shared by all instances
func NewRedisDispatcher(client *redis.RedisClient, sender Sender, workers, maxAttempts int, logger *zap.Logger) *Dispatcher {
	return newDispatcher(&redisQueue{redis: client}, sender, workers, maxAttempts, logger)
}
