package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker keeps locks in process memory. Used for single-instance
// deployments and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryLease
	clock func() time.Time
	seq   uint64
}

type memoryLease struct {
	id        uint64
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[string]memoryLease),
		clock: time.Now,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if lease, ok := l.held[key]; ok && (lease.expiresAt.IsZero() || now.Before(lease.expiresAt)) {
		return nil, ErrLockHeld
	}

	l.seq++
	lease := memoryLease{id: l.seq}
	if ttl > 0 {
		lease.expiresAt = now.Add(ttl)
	}
	l.held[key] = lease

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// An expired lease may have been taken over; only drop our own.
			if cur, ok := l.held[key]; ok && cur.id == lease.id {
				delete(l.held, key)
			}
		})
	}, nil
}
