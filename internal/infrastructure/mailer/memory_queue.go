package mailer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var ErrOutboxFull = errors.New("mailer: outbox is full")

type memoryQueue struct {
	ch chan Message
}

func (q *memoryQueue) push(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrOutboxFull
	}
}

func (q *memoryQueue) pop(ctx context.Context, timeout time.Duration) (Message, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-q.ch:
		return msg, true, nil
	case <-timer.C:
		return Message{}, false, nil
	case <-ctx.Done():
		return Message{}, false, ctx.Err()
	}
}

// NewMemoryDispatcher keeps queued mail in process memory
func NewMemoryDispatcher(sender Sender, workers, maxAttempts, capacity int, logger *zap.Logger) *Dispatcher {
	if capacity < 1 {
		capacity = 256
	}
	return newDispatcher(&memoryQueue{ch: make(chan Message, capacity)}, sender, workers, maxAttempts, logger)
}
