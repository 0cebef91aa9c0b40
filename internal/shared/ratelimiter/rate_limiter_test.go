package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, time.Minute)

	// バースト分は待たずに通る
	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)

	// 次のトークンは30秒後なので、短い期限では待てない
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx))
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(10, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRateLimiter_NonPositiveLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Minute)
	require.NotNil(t, rl)
	assert.Equal(t, 1, rl.limiter.Burst())
	require.NoError(t, rl.Wait(context.Background()))
}
