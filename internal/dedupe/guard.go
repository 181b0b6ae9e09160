package dedupe

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Guard claims a (user, key) pair for a short window so concurrent callers do
// not both write the same proposed event. The store's unique constraint is
// still the final arbiter; a lost claim only means "someone else is writing".
type Guard interface {
	Claim(ctx context.Context, userID, key string) (bool, error)
	Release(ctx context.Context, userID, key string) error
}

// NopGuard grants every claim.
type NopGuard struct{}

func (NopGuard) Claim(context.Context, string, string) (bool, error) { return true, nil }
func (NopGuard) Release(context.Context, string, string) error       { return nil }

const defaultTTL = 30 * time.Second

type RedisGuard struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisGuard connects to addr and pings it.
func NewRedisGuard(ctx context.Context, addr string) (*RedisGuard, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisGuardFromClient(rdb, defaultTTL), nil
}

func NewRedisGuardFromClient(rdb *goredis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisGuard{rdb: rdb, prefix: "ditch:event-claim:", ttl: ttl}
}

func (g *RedisGuard) claimKey(userID, key string) string {
	return g.prefix + userID + ":" + key
}

func (g *RedisGuard) Claim(ctx context.Context, userID, key string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, g.claimKey(userID, key), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, userID, key string) error {
	if err := g.rdb.Del(ctx, g.claimKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

func (g *RedisGuard) Close() error {
	return g.rdb.Close()
}
