package lock

import (
	"context"
	"errors"
	"time"
)

var ErrLockHeld = errors.New("lock is held by another holder")

// Locker hands out exclusive, non-blocking, expiring locks by key.
// Acquire returns ErrLockHeld when another holder owns key. The returned
// release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
