// Package events announces finished crawl runs on a Redis channel so
// downstream consumers can start syncing without polling the tables.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/boardlab/amazon-board-crawler/internal/stats"
)

type EventType string

const (
	EventTypeRunCompleted EventType = "CRAWL_RUN_COMPLETED"
	EventTypeRunFailed    EventType = "CRAWL_RUN_FAILED"
)

// RunEvent is the payload published after every crawl run.
type RunEvent struct {
	EventID   string        `json:"event_id"`
	EventType EventType     `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Kind      string        `json:"kind"`
	Summary   stats.Summary `json:"summary"`
	Error     string        `json:"error,omitempty"`
}

type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewPublisher(client *redis.Client, channel string, logger *slog.Logger) *Publisher {
	if channel == "" {
		channel = "crawl:runs"
	}
	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "event_publisher"),
	}
}

// PublishRunCompleted announces a finished run. kind names what was
// crawled: product, review or bestseller.
func (p *Publisher) PublishRunCompleted(ctx context.Context, kind string, summary stats.Summary) error {
	return p.publish(ctx, RunEvent{
		EventType: EventTypeRunCompleted,
		Kind:      kind,
		Summary:   summary,
	})
}

// PublishRunFailed announces a run that died before finishing.
func (p *Publisher) PublishRunFailed(ctx context.Context, kind string, summary stats.Summary, runErr error) error {
	return p.publish(ctx, RunEvent{
		EventType: EventTypeRunFailed,
		Kind:      kind,
		Summary:   summary,
		Error:     runErr.Error(),
	})
}

func (p *Publisher) publish(ctx context.Context, event RunEvent) error {
	event.EventID = uuid.NewString()
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	p.logger.Info("run event published",
		"channel", p.channel, "event_type", event.EventType, "kind", event.Kind)
	return nil
}
