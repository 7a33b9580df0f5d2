package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard implements Guard with SET NX and a short TTL. Replicas that
// lose the key skip the tenant without touching the database.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard creates a Redis-backed dispatch guard.
func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// TryLock acquires key for ttl. True means this caller holds it.
func (g *RedisGuard) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.client.SetNX(ctx, key, 1, ttl).Result()
}
