package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/salesinvoice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGenerationLimiter_Burst(t *testing.T) {
	l := NewGenerationLimiter(newClient(t), config.Config{GenerateRatePerMinute: 1, GenerateBurst: 2})
	require.True(t, l.Enabled())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Positive(t, res.RetryAfter)

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestGenerationLimiter_DisabledAllows(t *testing.T) {
	var l *GenerationLimiter
	assert.False(t, l.Enabled())
	res, err := l.Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	assert.Nil(t, NewGenerationLimiter(nil, config.Config{GenerateRatePerMinute: 1, GenerateBurst: 1}))
	assert.Nil(t, NewGenerationLimiter(newClient(t), config.Config{}))
}

func TestTokenBucket_Validates(t *testing.T) {
	b := NewTokenBucket(newClient(t))
	ctx := context.Background()

	_, err := b.Allow(ctx, "", 1, 1)
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = b.Allow(ctx, "k", 0, 1)
	assert.ErrorIs(t, err, ErrInvalidRate)

	var nilBucket *TokenBucket
	_, err = nilBucket.Allow(ctx, "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
