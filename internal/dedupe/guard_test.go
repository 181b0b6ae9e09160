package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisGuardFromClient(rdb, time.Minute), mr
}

func TestRedisGuardClaimIsExclusive(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "user-1", "Week Champion")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, "user-1", "Week Champion")
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	ok, err = g.Claim(ctx, "user-2", "Week Champion")
	require.NoError(t, err)
	assert.True(t, ok, "claims are per user")
}

func TestRedisGuardReleaseAndExpiry(t *testing.T) {
	g, mr := newTestGuard(t)
	ctx := context.Background()

	_, err := g.Claim(ctx, "u", "k")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "u", "k"))

	ok, err := g.Claim(ctx, "u", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = g.Claim(ctx, "u", "k")
	require.NoError(t, err)
	assert.True(t, ok, "claim expires after ttl")
}

func TestNewRedisGuardRequiresAddr(t *testing.T) {
	_, err := NewRedisGuard(context.Background(), "")
	assert.Error(t, err)
}

func TestNopGuard(t *testing.T) {
	var g Guard = NopGuard{}
	ok, err := g.Claim(context.Background(), "u", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
