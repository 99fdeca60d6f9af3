package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/five82/silhouette/internal/logging"
)

// Processor runs one queued job to completion.
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// Consumer drains queued jobs from Redis and runs them through Processor.
type Consumer struct {
	server  *asynq.Server
	proc    Processor
	logger  *logging.Logger
	store   *Store // nil if outcome persistence is disabled.
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	RedisURL    string
	Concurrency int
	Processor   Processor
	Logger      *logging.Logger
	Store       *Store
}

// NewConsumer builds a Consumer with three priority queues (critical,
// default, low) and exponential retry backoff, mirroring the VideoAgent
// worker's queue layout.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parsing redis url: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"silhouette:critical": 6,
			"silhouette:default":  3,
			"silhouette:low":      1,
		},
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return time.Duration(1<<uint(n)) * time.Minute
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			cfg.Logger.Info("task %s failed: %v", task.Type(), err)
		}),
	})

	return &Consumer{server: server, proc: cfg.Processor, logger: cfg.Logger, store: cfg.Store}, nil
}

// Start blocks serving queued jobs until Stop is called or the server
// errors.
func (c *Consumer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeProcess, c.handle)
	return c.server.Run(mux)
}

// Stop gracefully shuts the consumer down.
func (c *Consumer) Stop() {
	c.server.Shutdown()
}

func (c *Consumer) handle(ctx context.Context, task *asynq.Task) error {
	var job Job
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("queue: unmarshaling job payload: %w", err)
	}

	c.logger.Info("processing job %s (%s)", job.ID, job.InputPath)

	procErr := c.proc.Process(ctx, job)

	if c.store != nil {
		outcome := Outcome{JobID: job.ID, FinishedAt: time.Now(), Succeeded: procErr == nil}
		if procErr != nil {
			outcome.Error = procErr.Error()
		}
		if err := c.store.Record(ctx, outcome); err != nil {
			c.logger.Info("recording outcome for job %s: %v", job.ID, err)
		}
	}

	if procErr != nil {
		c.logger.Info("job %s failed: %v", job.ID, procErr)
		return procErr
	}
	c.logger.Info("job %s completed", job.ID)
	return nil
}
