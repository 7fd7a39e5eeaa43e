package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_Exclusive(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "payroll:c1:2025-04", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "payroll:c1:2025-04", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := l.Acquire(ctx, "payroll:c1:2025-05", time.Minute)
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, "payroll:c1:2025-04", time.Minute)
	require.NoError(t, err)
	again()
}

func TestMemoryLocker_Expiry(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }

	stale, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	// The expired holder must not free the new lease.
	stale()
	_, err = l.Acquire(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	fresh()
}

func TestMemoryLocker_Concurrent(t *testing.T) {
	l := NewMemoryLocker()
	var won int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(context.Background(), "same", time.Minute); err == nil {
				atomic.AddInt32(&won, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won)
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryLocker().Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	l := NewRedisLockerWithClient(client, "test-lock:")
	ctx := context.Background()
	key := "payroll:" + time.Now().Format("150405.000000")

	release, err := l.Acquire(ctx, key, 10*time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, key, 10*time.Second)
	assert.ErrorIs(t, err, ErrLockHeld)

	release()
	again, err := l.Acquire(ctx, key, 10*time.Second)
	require.NoError(t, err)
	again()
}
