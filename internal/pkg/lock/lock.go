// internal/pkg/lock/lock.go
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker provides per-entity mutual exclusion on top of Redis SETNX.
// Carts and orders are guarded with it so that recompute-then-save is
// atomic relative to concurrent mutations of the same entity.
type Locker struct {
	redisClient *redis.Client
	ttl         time.Duration
	retryEvery  time.Duration
	maxWait     time.Duration
}

// NewLocker creates a Locker. ttl bounds how long a crashed holder can
// keep an entity locked.
func NewLocker(redisClient *redis.Client) *Locker {
	return &Locker{
		redisClient: redisClient,
		ttl:         10 * time.Second,
		retryEvery:  50 * time.Millisecond,
		maxWait:     3 * time.Second,
	}
}

// Handle represents a held lock. Release with Unlock.
type Handle struct {
	key   string
	token string
}

// Acquire takes the lock for the given entity key, waiting up to
// maxWait. Failures are fast returns, not indefinite blocking.
func (l *Locker) Acquire(ctx context.Context, key string) (*Handle, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.redisClient.SetNX(ctx, l.redisKey(key), token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return &Handle{key: l.redisKey(key), token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for lock %s", key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryEvery):
		}
	}
}

// Release frees the lock if it is still held by this handle. A lock
// that expired and was re-acquired elsewhere is left alone.
func (l *Locker) Release(ctx context.Context, h *Handle) error {
	// Compare-and-delete so we never release someone else's lock.
	script := redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
	if err := script.Run(ctx, l.redisClient, []string{h.key}, h.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", h.key, err)
	}
	return nil
}

func (l *Locker) redisKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}
