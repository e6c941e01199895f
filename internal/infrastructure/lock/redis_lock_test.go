package lock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"booking-sync-service/pkg/logger"

	"github.com/bsm/redislock"
	"github.com/nalgeon/be"
)

func newTestLocker(ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		key:    DefaultKey,
		ttl:    ttl,
		logger: logger.NewNopLogger(),
	}
}

func TestKeepAliveRefreshesUntilStopped(t *testing.T) {
	l := newTestLocker(20 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	refreshed := make(chan struct{}, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(ctx, func(ctx context.Context) error {
			select {
			case refreshed <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-refreshed:
		case <-time.After(time.Second):
			t.Fatalf("lock refreshed %d times, want 3", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepAlive did not stop after cancel")
	}
}

func TestKeepAliveStopsWhenLockLost(t *testing.T) {
	l := newTestLocker(20 * time.Millisecond)

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(context.Background(), func(ctx context.Context) error {
			calls.Add(1)
			return redislock.ErrNotObtained
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepAlive kept running after a failed refresh")
	}
	be.Equal(t, calls.Load(), int32(1))
}

func TestKeepAliveWithoutTTL(t *testing.T) {
	l := newTestLocker(0)

	var calls atomic.Int32
	l.keepAlive(context.Background(), func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	be.Equal(t, calls.Load(), int32(0))
}
