// Package stats tracks per-run crawl counters and renders the summary
// document written at the end of every run.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type RunStats struct {
	runID    string
	start    time.Time
	end      atomic.Pointer[time.Time]
	success  atomic.Int64
	failure  atomic.Int64
	reviews  atomic.Int64
	requests atomic.Int64
}

func NewRunStats() *RunStats {
	return &RunStats{
		runID: uuid.NewString(),
		start: time.Now(),
	}
}

func (s *RunStats) RunID() string { return s.runID }

func (s *RunStats) RecordSuccess()   { s.success.Add(1) }
func (s *RunStats) RecordFailure()   { s.failure.Add(1) }
func (s *RunStats) AddReviews(n int) { s.reviews.Add(int64(n)) }
func (s *RunStats) RecordRequest()   { s.requests.Add(1) }

// Finish stamps the end time. Further counter updates are allowed but
// will not move the recorded duration.
func (s *RunStats) Finish() {
	now := time.Now()
	s.end.CompareAndSwap(nil, &now)
}

// Summary is the JSON document describing one finished run.
type Summary struct {
	RunID               string  `json:"run_id"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	TotalDurationSec    float64 `json:"total_duration_sec"`
	SuccessCount        int64   `json:"success_count"`
	FailureCount        int64   `json:"failure_count"`
	SuccessRate         float64 `json:"success_rate"`
	TotalReviewsCrawled int64   `json:"total_reviews_crawled"`
	TotalRequests       int64   `json:"total_requests"`
	ReviewsPerSec       float64 `json:"reviews_per_sec"`
}

func (s *RunStats) Summary() Summary {
	end := time.Now()
	if p := s.end.Load(); p != nil {
		end = *p
	}
	duration := end.Sub(s.start).Seconds()

	success := s.success.Load()
	failure := s.failure.Load()
	reviews := s.reviews.Load()

	summary := Summary{
		RunID:               s.runID,
		StartTime:           s.start.Format("2006-01-02 15:04:05"),
		EndTime:             end.Format("2006-01-02 15:04:05"),
		TotalDurationSec:    duration,
		SuccessCount:        success,
		FailureCount:        failure,
		TotalReviewsCrawled: reviews,
		TotalRequests:       s.requests.Load(),
	}
	if total := success + failure; total > 0 {
		summary.SuccessRate = float64(success) / float64(total)
	}
	if duration > 0 {
		summary.ReviewsPerSec = float64(reviews) / duration
	}
	return summary
}

// Save writes the summary JSON to disk, one file per run.
func (s *RunStats) Save(path string) error {
	data, err := json.MarshalIndent(s.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}
