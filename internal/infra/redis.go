package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RecomputoLockTTL bounds how long a crashed recompute can keep a year locked.
const RecomputoLockTTL = 5 * time.Minute

// RedisRecomputoLock is the year-scoped SETNX lock around destructive week
// recomputation. Satisfies service.RecomputoLock.
type RedisRecomputoLock struct {
	rdb *redis.Client
}

func NewRedisRecomputoLock(rdb *redis.Client) *RedisRecomputoLock {
	return &RedisRecomputoLock{rdb: rdb}
}

func lockKey(ano int) string {
	return fmt.Sprintf("lock:calendario:%d", ano)
}

func (l *RedisRecomputoLock) TryLock(ctx context.Context, ano int) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey(ano), "1", RecomputoLockTTL).Result()
}

func (l *RedisRecomputoLock) Unlock(ctx context.Context, ano int) error {
	return l.rdb.Del(ctx, lockKey(ano)).Err()
}

func (l *RedisRecomputoLock) Locked(ctx context.Context, ano int) (bool, error) {
	n, err := l.rdb.Exists(ctx, lockKey(ano)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
