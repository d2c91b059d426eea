package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"crm_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// SweepEnqueuer hands a sweep to the worker instead of running it inline.
type SweepEnqueuer interface {
	EnqueueSweep(ctx context.Context, source string) (string, error)
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSweep queues an immediate sweep and returns the task id.
func (c *Client) EnqueueSweep(ctx context.Context, source string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("scheduler client not configured")
	}

	task, err := NewPoolEscalationSweepTask(PoolEscalationSweepPayload{Source: source, RequestedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, sweepTaskOptions(c.queue)...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// NewRedisClient opens a go-redis client for the sweep lease.
func NewRedisClient(cfg config.SchedulerConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opt.TLSConfig = tlsConfigFor(opt.TLSConfig, cfg.GetRedisTLSInsecure())
	return redis.NewClient(opt), nil
}

func sweepTaskOptions(queue string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
	}
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfigFor(opt.TLSConfig, tlsInsecure),
	}, nil
}

func tlsConfigFor(parsed *tls.Config, tlsInsecure bool) *tls.Config {
	if parsed != nil {
		clone := parsed.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		return clone
	}
	if tlsInsecure {
		return &tls.Config{InsecureSkipVerify: true}
	}
	return nil
}

var _ SweepEnqueuer = (*Client)(nil)
