package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "order-debounce:"

// RedisGuard shares the debounce window across instances using redis
// SET NX with the window as the key expiry.
type RedisGuard struct {
	client redis.UniversalClient
}

// NewRedisGuard wraps the provided redis client.
func NewRedisGuard(client redis.UniversalClient) *RedisGuard {
	return &RedisGuard{client: client}
}

// Reserve implements the Guard interface.
func (g *RedisGuard) Reserve(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	ok, err := g.client.SetNX(ctx, redisKeyPrefix+key, now.UTC().Format(time.RFC3339Nano), window).Result()
	if err != nil {
		return false, fmt.Errorf("debounce: redis reserve: %w", err)
	}
	return ok, nil
}

// Release implements the Guard interface.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("debounce: redis release: %w", err)
	}
	return nil
}

// Prune implements the Guard interface. Redis expires reservations on its
// own, so there is nothing to sweep.
func (g *RedisGuard) Prune(context.Context, time.Time, time.Duration) (int, error) {
	return 0, nil
}

var _ Guard = (*RedisGuard)(nil)
