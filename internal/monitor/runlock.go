package monitor

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRunLock implements RunLock with a redis SET NX EX key, so a
// manual trigger on one instance skips while a scheduled run on another
// is still in flight. The TTL bounds how long a crashed holder can
// block subsequent runs.
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisRunLock creates a run lock on the given key.
func NewRedisRunLock(client *redis.Client, key string, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{client: client, key: key, ttl: ttl}
}

// TryLock attempts to acquire the lock without blocking.
func (l *RedisRunLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, "running", l.ttl).Result()
}

// Unlock releases the lock. A failed release is only logged; the TTL
// cleans up after us.
func (l *RedisRunLock) Unlock(ctx context.Context) {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		log.Printf("release run lock: %v", err)
	}
}
