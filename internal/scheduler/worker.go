package scheduler

import (
	"context"
	"errors"
	"fmt"

	"crm_backend/internal/pool/domain"
	poolservice "crm_backend/internal/pool/service"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Sweeper runs one escalation sweep.
type Sweeper interface {
	Sweep(ctx context.Context, trigger string) (poolservice.SweepResult, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper Sweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper Sweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(sweeper, log)
	w.server = server
	return w, nil
}

func newWorker(sweeper Sweeper, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{mux: mux, sweeper: sweeper, log: log}
	mux.HandleFunc(TaskPoolEscalationSweep, w.handlePoolEscalationSweep)
	return w
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start scheduler worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handlePoolEscalationSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePoolEscalationSweepPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	result, err := w.sweeper.Sweep(ctx, poolservice.TriggerScheduler)
	if errors.Is(err, domain.ErrConfigurationMissing()) {
		// nothing to do until an admin saves the configuration
		w.log.Warn("pool sweep skipped, configuration missing", "source", payload.Source)
		return nil
	}
	if err != nil {
		return err
	}

	if result.Skipped {
		w.log.Debug("pool sweep skipped, lease held", "source", payload.Source)
	}
	return nil
}
