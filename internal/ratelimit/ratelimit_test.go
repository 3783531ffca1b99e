package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleRateLimiterWaits(t *testing.T) {
	limiter := NewSimpleRateLimiter(20*time.Millisecond, 20*time.Millisecond)

	require.NoError(t, limiter.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestSimpleRateLimiterCancelled(t *testing.T) {
	limiter := NewSimpleRateLimiter(time.Minute, time.Minute)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimpleRateLimiterSetDelay(t *testing.T) {
	limiter := NewSimpleRateLimiter(time.Second, 2*time.Second)
	limiter.SetDelay(3*time.Second, 4*time.Second)

	delay := limiter.calculateDelay()
	assert.GreaterOrEqual(t, delay, 3*time.Second)
	assert.Less(t, delay, 4*time.Second)
}

func TestAdaptiveRateLimiterBacksOff(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(2*time.Second, 4*time.Second)

	limiter.RecordError()
	limiter.RecordError()
	assert.Equal(t, 2*time.Second, limiter.minDelay)

	limiter.RecordError()
	assert.Equal(t, 3*time.Second, limiter.minDelay)
	assert.Equal(t, 6*time.Second, limiter.maxDelay)
}

func TestAdaptiveRateLimiterRecovers(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(10*time.Second, 20*time.Second)

	for i := 0; i < 6; i++ {
		limiter.RecordSuccess()
	}
	assert.Equal(t, 9*time.Second, limiter.minDelay)
}

func TestAdaptiveRateLimiterSuccessResetsErrors(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(2*time.Second, 4*time.Second)

	limiter.RecordError()
	limiter.RecordError()
	limiter.RecordSuccess()
	limiter.RecordError()

	assert.Equal(t, 2*time.Second, limiter.minDelay)
}
