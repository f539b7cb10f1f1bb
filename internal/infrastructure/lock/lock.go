// Package lock serializes read-modify-write cycles on a single document.
package lock

import (
	"context"
	"errors"
)

var ErrLockTimeout = errors.New("lock: timed out waiting for lock")

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func()

// Locker grants exclusive access to a key until the returned Unlock is called
// or the lock TTL elapses.
type Locker interface {
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// DocumentKey is the lock key guarding a document's state
func DocumentKey(documentID string) string {
	return "document:" + documentID
}
