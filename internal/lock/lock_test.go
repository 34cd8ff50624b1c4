package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()
	key := "invoice:generate:1:2026-01-21:2026-02-20"

	token, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, key, token))

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ReleaseIgnoresForeignToken(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()
	key := "invoice:generate:2:2026-01-21:2026-02-20"

	token, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, key, "someone-else"))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()
	key := "invoice:generate:3:2026-01-21:2026-02-20"

	_, ok, err := locker.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(6 * time.Second)

	_, ok, err = locker.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_Validation(t *testing.T) {
	locker, _ := newTestLocker(t)

	_, _, err := locker.TryLock(context.Background(), "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, _, err = locker.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestNoopLocker(t *testing.T) {
	var l Locker = NoopLocker{}
	token, ok, err := l.TryLock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Release(context.Background(), "k", token))
}
