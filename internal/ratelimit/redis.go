package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"macrolens/internal/config"
)

// Redis counts requests in a shared key per client so all API replicas
// share one budget. The window starts when SET NX creates the key with its
// expiry; INCR keeps that expiry, and both run in one MULTI/EXEC so a key
// never exists without a TTL.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis returns a Redis-backed limiter. Keys are namespaced by prefix.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

// Allow implements Limiter.
func (l *Redis) Allow(ctx context.Context, key string, policy config.RatePolicy) (Decision, error) {
	k := l.prefix + ":" + key

	var (
		count *redis.IntCmd
		ttl   *redis.DurationCmd
	)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, policy.Window)
		count = pipe.Incr(ctx, k)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: %w", err)
	}

	reset := ttl.Val()
	if reset < 0 {
		reset = policy.Window
	}
	return decide(count.Val(), policy, reset), nil
}
