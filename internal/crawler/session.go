package crawler

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/boardlab/amazon-board-crawler/internal/models"
	"github.com/boardlab/amazon-board-crawler/internal/stats"
)

// ProductFetcher yields one product record per ASIN.
type ProductFetcher interface {
	Crawl(ctx context.Context, asin string) (*models.ProductRecord, error)
}

// ReviewFetcher yields the review outcome for one ASIN.
type ReviewFetcher interface {
	Crawl(ctx context.Context, asin string) (models.ReviewResult, *models.FailureRecord)
}

// Session fans a batch of ASINs out over a bounded number of workers.
// Each worker gets its own browser context; the semaphore caps how many
// contexts exist at once.
type Session struct {
	products ProductFetcher
	reviews  ReviewFetcher
	stats    *stats.RunStats
	metrics  *stats.Metrics
	sem      *semaphore.Weighted
	logger   *slog.Logger
	jitter   time.Duration
}

func NewSession(products ProductFetcher, reviews ReviewFetcher, runStats *stats.RunStats, metrics *stats.Metrics, concurrency int) *Session {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Session{
		products: products,
		reviews:  reviews,
		stats:    runStats,
		metrics:  metrics,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		logger:   slog.Default().With("component", "session"),
		jitter:   2 * time.Second,
	}
}

// CrawlProducts crawls every ASIN and returns one record per input, in
// input order. Failed items keep their Error field; nothing is dropped.
func (s *Session) CrawlProducts(ctx context.Context, asins []string) []*models.ProductRecord {
	results := make([]*models.ProductRecord, len(asins))
	var wg sync.WaitGroup

	for i, asin := range asins {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.logger.Warn("session cancelled", "remaining", len(asins)-i)
			break
		}

		wg.Add(1)
		go func(idx int, asin string) {
			defer wg.Done()
			defer s.sem.Release(1)

			s.metrics.WorkerStarted()
			defer s.metrics.WorkerDone()
			s.sleepJitter()

			start := time.Now()
			rec, err := s.products.Crawl(ctx, asin)
			s.stats.RecordRequest()
			s.metrics.IncPage("product")
			s.metrics.ObservePage(time.Since(start))

			if err != nil {
				s.stats.RecordFailure()
				s.metrics.IncFailure(string(models.FailureOther))
			} else {
				s.stats.RecordSuccess()
				s.metrics.AddItems("product", 1)
			}
			results[idx] = rec
		}(i, asin)
	}

	wg.Wait()

	// Drop slots never filled because the context died mid-batch.
	out := results[:0]
	for _, rec := range results {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// CrawlReviews crawls review listings for every ASIN. Every input yields
// either a result with reviews or a failure record, never both with
// content and never neither.
func (s *Session) CrawlReviews(ctx context.Context, asins []string) ([]models.ReviewResult, []models.FailureRecord) {
	type outcome struct {
		idx     int
		result  models.ReviewResult
		failure *models.FailureRecord
	}

	// Buffered to the batch size: workers must never block on send, or a
	// full semaphore leaves the dispatch loop waiting on a slot that a
	// blocked worker can never release.
	outcomes := make(chan outcome, len(asins))
	var wg sync.WaitGroup

	for i, asin := range asins {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.logger.Warn("session cancelled", "remaining", len(asins)-i)
			break
		}

		wg.Add(1)
		go func(idx int, asin string) {
			defer wg.Done()
			defer s.sem.Release(1)

			s.metrics.WorkerStarted()
			defer s.metrics.WorkerDone()
			s.sleepJitter()

			start := time.Now()
			result, failure := s.reviews.Crawl(ctx, asin)
			s.stats.RecordRequest()
			s.metrics.IncPage("reviews")
			s.metrics.ObservePage(time.Since(start))

			if failure != nil {
				s.stats.RecordFailure()
				s.metrics.IncFailure(string(failure.FailureType))
			} else {
				s.stats.RecordSuccess()
				s.stats.AddReviews(result.CrawlReviewCnt)
				s.metrics.AddItems("review", result.CrawlReviewCnt)
			}
			outcomes <- outcome{idx: idx, result: result, failure: failure}
		}(i, asin)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]outcome, 0, len(asins))
	for o := range outcomes {
		collected = append(collected, o)
	}
	sort.Slice(collected, func(a, b int) bool { return collected[a].idx < collected[b].idx })

	results := make([]models.ReviewResult, 0, len(collected))
	var failures []models.FailureRecord
	for _, o := range collected {
		results = append(results, o.result)
		if o.failure != nil {
			failures = append(failures, *o.failure)
		}
	}
	return results, failures
}

// sleepJitter desynchronizes workers so acquisitions do not hit Amazon
// in lockstep.
func (s *Session) sleepJitter() {
	if s.jitter <= 0 {
		return
	}
	time.Sleep(time.Duration(rand.Int63n(int64(s.jitter))))
}
