package inflight

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, l Limiter) {
	t.Helper()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "u1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "u1")
	require.ErrorIs(t, err, ErrBusy)

	other, err := l.Acquire(ctx, "u2")
	require.NoError(t, err)
	other()

	release()
	release() // second call is harmless

	again, err := l.Acquire(ctx, "u1")
	require.NoError(t, err)
	again()
}

func TestLocal(t *testing.T) {
	testLimiter(t, NewLocal())
}

func TestRedis(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testLimiter(t, NewRedis(client, "ai:inflight:", time.Minute))
}

func TestRedis_ExpiredClaimIsNotReleasedByOldHolder(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, "ai:inflight:", time.Second)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "u1")
	require.NoError(t, err)
	require.True(t, s.Exists("ai:inflight:u1"))

	s.FastForward(2 * time.Second)
	require.False(t, s.Exists("ai:inflight:u1"))

	fresh, err := l.Acquire(ctx, "u1")
	require.NoError(t, err)

	stale()
	require.True(t, s.Exists("ai:inflight:u1"))

	fresh()
	require.False(t, s.Exists("ai:inflight:u1"))
}
