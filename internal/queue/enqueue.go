package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Producer enqueues jobs for Consumer instances to pick up.
type Producer struct {
	client *asynq.Client
	redis  *redis.Client
}

// NewProducer connects to Redis at redisURL for both task enqueueing (via
// asynq) and direct queue-depth inspection (via go-redis), which asynq
// does not expose a client-side API for.
func NewProducer(redisURL string) (*Producer, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parsing redis url: %w", err)
	}

	redisOpt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parsing redis url for status client: %w", err)
	}

	return &Producer{
		client: asynq.NewClient(opt),
		redis:  redis.NewClient(redisOpt),
	}, nil
}

// Priority selects which of the three queues a job lands on.
type Priority string

const (
	PriorityCritical Priority = "silhouette:critical"
	PriorityDefault  Priority = "silhouette:default"
	PriorityLow      Priority = "silhouette:low"
)

// Enqueue submits job to the given priority queue.
func (p *Producer) Enqueue(ctx context.Context, job Job, priority Priority) error {
	payload, err := job.Marshal()
	if err != nil {
		return fmt.Errorf("queue: marshaling job %s: %w", job.ID, err)
	}
	task := asynq.NewTask(TaskTypeProcess, payload)
	_, err = p.client.EnqueueContext(ctx, task, asynq.Queue(string(priority)))
	if err != nil {
		return fmt.Errorf("queue: enqueueing job %s: %w", job.ID, err)
	}
	return nil
}

// Depth reports the approximate number of pending tasks in a priority
// queue, read directly from asynq's Redis list key.
func (p *Producer) Depth(ctx context.Context, priority Priority) (int64, error) {
	return p.redis.LLen(ctx, "asynq:{"+string(priority)+"}:pending").Result()
}

// Close releases the underlying Redis connections.
func (p *Producer) Close() error {
	if err := p.client.Close(); err != nil {
		return err
	}
	return p.redis.Close()
}
