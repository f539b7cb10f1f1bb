package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Outbox queues messages for asynchronous delivery
type Outbox interface {
	Enqueue(ctx context.Context, msg Message) error
}

// queue is the storage behind a worker pool
type queue interface {
	push(ctx context.Context, msg Message) error
	// pop blocks until a message is available, the timeout elapses (ok=false)
	// or ctx is done
	pop(ctx context.Context, timeout time.Duration) (msg Message, ok bool, err error)
}

const defaultRetryDelay = 5 * time.Second

// Dispatcher drains a queue with a fixed pool of workers and retries failed
// deliveries up to maxAttempts, waiting attempts*retryDelay before each retry.
type Dispatcher struct {
	queue       queue
	sender      Sender
	workers     int
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newDispatcher(q queue, sender Sender, workers, maxAttempts int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		queue:       q,
		sender:      sender,
		workers:     workers,
		maxAttempts: maxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      logger,
	}
}

// SetRetryDelay changes the base backoff; non-positive values are ignored
func (d *Dispatcher) SetRetryDelay(delay time.Duration) {
	if delay > 0 {
		d.retryDelay = delay
	}
}

func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) error {
	return d.queue.push(ctx, msg)
}

// Start launches the workers; they run until Stop is called
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i)
	}

	d.logger.Info("Mail dispatcher started",
		zap.Int("workers", d.workers),
		zap.Int("max_attempts", d.maxAttempts),
	)
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Mail dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()

	for ctx.Err() == nil {
		msg, ok, err := d.queue.pop(ctx, time.Second)
		if ctx.Err() != nil {
			if ok {
				d.requeue(ctx, msg)
			}
			return
		}
		if err != nil {
			d.logger.Error("Failed to read mail outbox",
				zap.Int("worker", id),
				zap.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		d.deliver(ctx, id, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, msg Message) {
	msg.Attempts++

	err := d.sender.Send(ctx, msg)
	if err == nil {
		return
	}

	if msg.Attempts >= d.maxAttempts {
		d.logger.Error("Mail delivery failed, giving up",
			zap.Int("worker", id),
			zap.String("to", msg.To),
			zap.Int("attempts", msg.Attempts),
			zap.Error(err),
		)
		return
	}

	backoff := time.Duration(msg.Attempts) * d.retryDelay
	d.logger.Warn("Mail delivery failed, requeueing",
		zap.Int("worker", id),
		zap.String("to", msg.To),
		zap.Int("attempts", msg.Attempts),
		zap.Duration("backoff", backoff),
		zap.Error(err),
	)

	timer := time.NewTimer(backoff)
	select {
	case <-timer.C:
	case <-ctx.Done():
		// on shutdown the message is requeued without waiting
		timer.Stop()
	}

	d.requeue(ctx, msg)
}

// requeue pushes msg back even when ctx is already cancelled
func (d *Dispatcher) requeue(ctx context.Context, msg Message) {
	if err := d.queue.push(context.WithoutCancel(ctx), msg); err != nil {
		d.logger.Error("Failed to requeue mail",
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
}
