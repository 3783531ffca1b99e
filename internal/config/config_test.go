package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Crawler.Concurrency)
	assert.Equal(t, 10, cfg.Crawler.MaxReviewPages)
	assert.Equal(t, 3*time.Second, cfg.Crawler.RateLimitMin)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "en-US", cfg.Browser.Locale)
	assert.Equal(t, "board_crawler", cfg.Database.DBName)
	assert.Equal(t, "crawl:runs", cfg.Redis.Channel)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CRAWLER_CONCURRENCY", "8")
	t.Setenv("CRAWLER_PROXIES", "http://p1:8080, http://p2:8080")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("CRAWLER_RATE_LIMIT_MIN", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Crawler.Concurrency)
	assert.Equal(t, []string{"http://p1:8080", "http://p2:8080"}, cfg.Crawler.Proxies)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, time.Second, cfg.Crawler.RateLimitMin)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Crawler.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg.Crawler.Concurrency = 2
	cfg.Crawler.RateLimitMin = 20 * time.Second
	cfg.Crawler.RateLimitMax = 5 * time.Second
	assert.Error(t, cfg.Validate())

	cfg.Crawler.RateLimitMin = time.Second
	cfg.Database.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("CRAWLER_CONCURRENCY", "not a number")
	t.Setenv("BROWSER_HEADLESS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Crawler.Concurrency)
	assert.True(t, cfg.Browser.Headless)
}
