package proxy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRoundRobin(t *testing.T) {
	pool := NewPool([]string{"http://p1:8080", "http://p2:8080"}, 3, time.Minute)

	first, ok := pool.Next()
	require.True(t, ok)
	second, ok := pool.Next()
	require.True(t, ok)
	third, ok := pool.Next()
	require.True(t, ok)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, third)
}

func TestPoolBenchesAfterMaxErrors(t *testing.T) {
	pool := NewPool([]string{"http://p1:8080", "http://p2:8080"}, 2, time.Hour)

	pool.ReportError("http://p1:8080")
	pool.ReportError("http://p1:8080")

	for i := 0; i < 4; i++ {
		url, ok := pool.Next()
		require.True(t, ok)
		assert.Equal(t, "http://p2:8080", url)
	}
}

func TestPoolAllBenched(t *testing.T) {
	pool := NewPool([]string{"http://p1:8080"}, 1, time.Hour)
	pool.ReportError("http://p1:8080")

	_, ok := pool.Next()
	assert.False(t, ok)
}

func TestPoolLazyRecovery(t *testing.T) {
	pool := NewPool([]string{"http://p1:8080"}, 1, 10*time.Millisecond)
	pool.ReportError("http://p1:8080")

	_, ok := pool.Next()
	require.False(t, ok)

	time.Sleep(20 * time.Millisecond)

	url, ok := pool.Next()
	require.True(t, ok)
	assert.Equal(t, "http://p1:8080", url)
}

func TestPoolSuccessResetsStreak(t *testing.T) {
	pool := NewPool([]string{"http://p1:8080"}, 2, time.Hour)

	pool.ReportError("http://p1:8080")
	pool.ReportSuccess("http://p1:8080")
	pool.ReportError("http://p1:8080")

	_, ok := pool.Next()
	assert.True(t, ok, "streak was broken by a success")
}

func TestPoolEmpty(t *testing.T) {
	pool := NewPool(nil, 3, time.Minute)
	assert.Zero(t, pool.Len())

	_, ok := pool.Next()
	assert.False(t, ok)
}
