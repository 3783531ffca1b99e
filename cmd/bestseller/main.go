package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/boardlab/amazon-board-crawler/internal/browser"
	"github.com/boardlab/amazon-board-crawler/internal/config"
	"github.com/boardlab/amazon-board-crawler/internal/crawler"
	"github.com/boardlab/amazon-board-crawler/internal/database"
	"github.com/boardlab/amazon-board-crawler/internal/events"
	"github.com/boardlab/amazon-board-crawler/internal/proxy"
	"github.com/boardlab/amazon-board-crawler/internal/ratelimit"
	"github.com/boardlab/amazon-board-crawler/internal/selectors"
	"github.com/boardlab/amazon-board-crawler/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	urls := cfg.Crawler.BestsellerURLs
	if len(urls) == 0 {
		urls = selectors.BestsellerURLs
	}

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		MaxConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		logger.Error("failed to init schema", "error", err)
		os.Exit(1)
	}
	store := database.NewStore(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	publisher := events.NewPublisher(redisClient, cfg.Redis.Channel, logger)

	proxyPool := proxy.NewPool(cfg.Crawler.Proxies, cfg.Crawler.ProxyMaxErrors, cfg.Crawler.ProxyRecovery)
	proxyServer, _ := proxyPool.Next()

	runner, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ProxyServer:    proxyServer,
		ProxyReporter:  proxyPool,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ExtraHeaders:   browser.DefaultOptions().ExtraHeaders,
	})
	if err != nil {
		logger.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer runner.Close()

	cookies, err := browser.LoadCookies(cfg.Crawler.CookieFile)
	if err != nil {
		logger.Error("failed to load cookies", "error", err)
		os.Exit(1)
	}

	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Crawler.RateLimitMin, cfg.Crawler.RateLimitMax)
	runStats := stats.NewRunStats()
	bestsellers := crawler.NewBestsellerCrawler(runner, cookies, limiter)

	logger.Info("starting bestseller crawl", "run_id", runStats.RunID(), "boards", len(urls))

	for _, url := range urls {
		entries, err := bestsellers.CrawlBoard(ctx, url)
		runStats.RecordRequest()
		if err != nil {
			runStats.RecordFailure()
			logger.Error("board crawl failed", "url", url, "error", err)
			if len(entries) == 0 {
				continue
			}
		} else {
			runStats.RecordSuccess()
		}
		if err := store.SaveRankings(ctx, entries); err != nil {
			logger.Error("failed to save rankings", "url", url, "error", err)
		}
	}

	runStats.Finish()
	summary := runStats.Summary()
	summaryPath := filepath.Join(cfg.Crawler.SummaryDir, "bestseller-"+runStats.RunID()+".json")
	if err := runStats.Save(summaryPath); err != nil {
		logger.Error("failed to write run summary", "error", err)
	}
	if err := publisher.PublishRunCompleted(ctx, "bestseller", summary); err != nil {
		logger.Error("failed to publish run event", "error", err)
	}

	logger.Info("bestseller crawl finished",
		"run_id", runStats.RunID(),
		"boards_ok", summary.SuccessCount,
		"boards_failed", summary.FailureCount)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
