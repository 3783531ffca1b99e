package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boardlab/amazon-board-crawler/internal/browser"
	"github.com/boardlab/amazon-board-crawler/internal/config"
	"github.com/boardlab/amazon-board-crawler/internal/crawler"
	"github.com/boardlab/amazon-board-crawler/internal/database"
	"github.com/boardlab/amazon-board-crawler/internal/events"
	"github.com/boardlab/amazon-board-crawler/internal/proxy"
	"github.com/boardlab/amazon-board-crawler/internal/ratelimit"
	"github.com/boardlab/amazon-board-crawler/internal/stats"
)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

func main() {
	var (
		asinFile    = flag.String("asins", "", "file with one ASIN per line (overrides CRAWLER_ASIN_FILE)")
		skipReviews = flag.Bool("skip-reviews", false, "crawl product pages only")
	)
	flag.Parse()

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

	path := *asinFile
	if path == "" {
		path = cfg.Crawler.ASINFile
	}
	asins, err := readASINs(path, flag.Args())
	if err != nil {
		logger.Error("failed to read asin list", "error", err)
		os.Exit(1)
	}
	if len(asins) == 0 {
		logger.Error("no asins to crawl; pass -asins or arguments")
		os.Exit(1)
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
	metrics := stats.NewMetrics()

	products := crawler.NewProductCrawler(runner, cookies, limiter)
	reviews := crawler.NewReviewCrawler(runner, cookies, limiter, cfg.Crawler.MaxReviewPages)
	session := crawler.NewSession(products, reviews, runStats, metrics, cfg.Crawler.Concurrency)

	// Resume: skip items another run already finished today.
	done, err := store.CrawledASINs(ctx)
	if err != nil {
		logger.Error("failed to check crawl progress", "error", err)
		os.Exit(1)
	}
	pending := filterASINs(asins, done)
	logger.Info("starting product crawl",
		"run_id", runStats.RunID(), "total", len(asins), "pending", len(pending))

	records := session.CrawlProducts(ctx, pending)
	if err := store.SaveProducts(ctx, records); err != nil {
		logger.Error("failed to save products", "error", err)
	}

	if !*skipReviews {
		reviewed, err := store.ReviewedASINs(ctx, time.Now().Format("2006-01-02"))
		if err != nil {
			logger.Error("failed to check review progress", "error", err)
			os.Exit(1)
		}
		reviewPending := filterASINs(asins, reviewed)
		logger.Info("starting review crawl", "pending", len(reviewPending))

		results, failures := session.CrawlReviews(ctx, reviewPending)
		for _, r := range results {
			if err := store.SaveReviews(ctx, r.Reviews); err != nil {
				logger.Error("failed to save reviews", "asin", r.ASIN, "error", err)
			}
		}
		if err := store.SaveFailures(ctx, failures); err != nil {
			logger.Error("failed to save failures", "error", err)
		}
	}

	runStats.Finish()
	summary := runStats.Summary()
	summaryPath := filepath.Join(cfg.Crawler.SummaryDir, "run-"+runStats.RunID()+".json")
	if err := runStats.Save(summaryPath); err != nil {
		logger.Error("failed to write run summary", "error", err)
	}
	if err := publisher.PublishRunCompleted(ctx, "product", summary); err != nil {
		logger.Error("failed to publish run event", "error", err)
	}

	logger.Info("crawl finished",
		"run_id", runStats.RunID(),
		"success", summary.SuccessCount,
		"failure", summary.FailureCount,
		"reviews", summary.TotalReviewsCrawled,
		"duration_sec", summary.TotalDurationSec)
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

// readASINs merges the file list with any ASINs passed as arguments.
func readASINs(path string, args []string) ([]string, error) {
	var asins []string
	seen := make(map[string]struct{})

	add := func(raw string) error {
		asin := strings.ToUpper(strings.TrimSpace(raw))
		if asin == "" || strings.HasPrefix(asin, "#") {
			return nil
		}
		if !asinPattern.MatchString(asin) {
			return fmt.Errorf("invalid asin %q", raw)
		}
		if _, dup := seen[asin]; !dup {
			seen[asin] = struct{}{}
			asins = append(asins, asin)
		}
		return nil
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if err := add(line); err != nil {
				return nil, err
			}
		}
	}
	for _, arg := range args {
		if err := add(arg); err != nil {
			return nil, err
		}
	}
	return asins, nil
}

func filterASINs(asins []string, done map[string]struct{}) []string {
	out := make([]string, 0, len(asins))
	for _, a := range asins {
		if _, ok := done[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}
