package scheduler

import (
	"context"
	"fmt"
	"time"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the escalation sweep on a cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	cron      string
	queue     string
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Warn("pool sweep enqueue failed", "error", err)
			}
		},
	})

	return &Periodic{
		scheduler: scheduler,
		cron:      cfg.GetPoolSweepCron(),
		queue:     queueName(cfg),
		log:       log,
	}, nil
}

// Register adds the sweep entry and returns its id.
func (p *Periodic) Register() (string, error) {
	task, err := NewPoolEscalationSweepTask(PoolEscalationSweepPayload{Source: "cron"})
	if err != nil {
		return "", err
	}

	// a sweep still queued makes the next tick redundant
	opts := append(sweepTaskOptions(p.queue), asynq.Unique(SweepInterval(p.cron)))
	entryID, err := p.scheduler.Register(p.cron, task, opts...)
	if err != nil {
		return "", fmt.Errorf("register pool sweep %q: %w", p.cron, err)
	}
	p.log.Info("pool sweep scheduled", "cron", p.cron, "entryId", entryID)
	return entryID, nil
}

// Run enqueues on schedule until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start periodic scheduler: %w", err)
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
