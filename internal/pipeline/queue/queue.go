// Package queue implements the trigger bridge: a thin Redis list-backed
// broker carrying "scrape.<source>" and "ml.analyze" messages between the
// scheduler/API and the runners, mirroring the Celery broker protocol the
// shared Redis connection already doubles as (internal/database).
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scrapeQueuePrefix = "scrape."
	analyzeQueueName  = "ml.analyze"
)

// Queue publishes and consumes pipeline messages over Redis lists.
type Queue struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// ScrapeMessage requests a scrape run for one source.
type ScrapeMessage struct {
	Source string `json:"source"`
	TaskID string `json:"task_id"`
}

// AnalyzeMessage requests sentiment/bias analysis for a set of articles.
type AnalyzeMessage struct {
	ArticleIDs []int  `json:"article_ids"`
	TaskID     string `json:"task_id"`
}

func scrapeQueueName(source string) string {
	return scrapeQueuePrefix + source
}

// PublishScrape enqueues a scrape task for source.
func (q *Queue) PublishScrape(ctx context.Context, msg ScrapeMessage) error {
	return q.publish(ctx, scrapeQueueName(msg.Source), msg)
}

// PublishAnalyze enqueues an analysis task.
func (q *Queue) PublishAnalyze(ctx context.Context, msg AnalyzeMessage) error {
	return q.publish(ctx, analyzeQueueName, msg)
}

func (q *Queue) publish(ctx context.Context, queueName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", queueName, err)
	}
	if err := q.rdb.LPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}
	return nil
}

// ConsumeScrape blocks (up to timeout) waiting for the next scrape task
// for source.
func (q *Queue) ConsumeScrape(ctx context.Context, source string, timeout time.Duration) (*ScrapeMessage, error) {
	var msg ScrapeMessage
	if err := q.consume(ctx, scrapeQueueName(source), timeout, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ConsumeAnalyze blocks (up to timeout) waiting for the next analyze task.
func (q *Queue) ConsumeAnalyze(ctx context.Context, timeout time.Duration) (*AnalyzeMessage, error) {
	var msg AnalyzeMessage
	if err := q.consume(ctx, analyzeQueueName, timeout, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (q *Queue) consume(ctx context.Context, queueName string, timeout time.Duration, out interface{}) error {
	result, err := q.rdb.BRPop(ctx, timeout, queueName).Result()
	if err != nil {
		return err
	}
	// BRPop returns [queueName, payload].
	if len(result) < 2 {
		return fmt.Errorf("unexpected BRPOP result for %s", queueName)
	}
	return json.Unmarshal([]byte(result[1]), out)
}
