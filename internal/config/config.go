// Package config loads all runtime settings from the environment, with
// an optional .env file layered underneath.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Crawler  CrawlerConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	AccessKey       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type CrawlerConfig struct {
	Concurrency    int
	MaxReviewPages int
	MaxRetries     int
	RateLimitMin   time.Duration
	RateLimitMax   time.Duration
	CookieFile     string
	SummaryDir     string
	Proxies        []string
	ProxyMaxErrors int
	ProxyRecovery  time.Duration
	ASINFile       string
	BestsellerURLs []string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			AccessKey:       getEnvOrDefault("API_ACCESS_KEY", ""),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Crawler: CrawlerConfig{
			Concurrency:    getIntOrDefault("CRAWLER_CONCURRENCY", 2),
			MaxReviewPages: getIntOrDefault("CRAWLER_MAX_REVIEW_PAGES", 10),
			MaxRetries:     getIntOrDefault("CRAWLER_MAX_RETRIES", 3),
			RateLimitMin:   getDurationOrDefault("CRAWLER_RATE_LIMIT_MIN", 3*time.Second),
			RateLimitMax:   getDurationOrDefault("CRAWLER_RATE_LIMIT_MAX", 10*time.Second),
			CookieFile:     getEnvOrDefault("CRAWLER_COOKIE_FILE", ""),
			SummaryDir:     getEnvOrDefault("CRAWLER_SUMMARY_DIR", "."),
			Proxies:        getStringSliceOrDefault("CRAWLER_PROXIES", []string{}),
			ProxyMaxErrors: getIntOrDefault("CRAWLER_PROXY_MAX_ERRORS", 3),
			ProxyRecovery:  getDurationOrDefault("CRAWLER_PROXY_RECOVERY", 10*time.Minute),
			ASINFile:       getEnvOrDefault("CRAWLER_ASIN_FILE", ""),
			BestsellerURLs: getStringSliceOrDefault("CRAWLER_BESTSELLER_URLS", []string{}),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "board_crawler"),
			MaxConns: getIntOrDefault("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Channel:  getEnvOrDefault("REDIS_RUN_CHANNEL", "crawl:runs"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawler.Concurrency < 1 {
		return fmt.Errorf("CRAWLER_CONCURRENCY must be at least 1")
	}

	if c.Crawler.MaxReviewPages < 1 {
		return fmt.Errorf("CRAWLER_MAX_REVIEW_PAGES must be at least 1")
	}

	if c.Crawler.RateLimitMin > c.Crawler.RateLimitMax {
		return fmt.Errorf("CRAWLER_RATE_LIMIT_MIN cannot be greater than CRAWLER_RATE_LIMIT_MAX")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT out of range: %d", c.Database.Port)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
