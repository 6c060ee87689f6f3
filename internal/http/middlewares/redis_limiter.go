package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares fixed-window counters between API instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + ":" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	// the first hit opens the window
	retry := ttl.Val()
	if retry < 0 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return false, 0, err
		}
		retry = l.window
	}

	if incr.Val() > int64(l.limit) {
		return false, retry, nil
	}
	return true, 0, nil
}
