package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-sync-service/internal/usecase"
	"booking-sync-service/pkg/logger"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the redis key guarding the reconcile cycle
const DefaultKey = "lock:booking-reconcile"

// RedisLocker is a single-writer lock for reconcile cycles shared across processes
type RedisLocker struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisLocker creates a locker on the given redis client
func NewRedisLocker(client redis.UniversalClient, key string, ttl time.Duration, logger logger.Logger) *RedisLocker {
	if key == "" {
		key = DefaultKey
	}
	return &RedisLocker{
		locker: redislock.New(client),
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire obtains the lock or returns usecase.ErrCycleLocked when it is held elsewhere
func (l *RedisLocker) Acquire(ctx context.Context) (func(), error) {
	lock, err := l.locker.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.logger.Warn("Reconcile cycle already running elsewhere", "key", l.key)
		return nil, usecase.ErrCycleLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", l.key, err)
	}

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		l.keepAlive(refreshCtx, func(ctx context.Context) error {
			return lock.Refresh(ctx, l.ttl, nil)
		})
	}()

	return func() {
		stopRefresh()
		<-refreshDone
		// the cycle context may already be canceled at release time
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release reconcile lock", "key", l.key, "error", err)
		}
	}, nil
}

// keepAlive extends the lock every half TTL until ctx is done.
// It gives up after the first failed refresh, since the lock is then lost.
func (l *RedisLocker) keepAlive(ctx context.Context, refresh func(ctx context.Context) error) {
	interval := l.ttl / 2
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Warn("Failed to refresh reconcile lock", "key", l.key, "error", err)
				return
			}
		}
	}
}
