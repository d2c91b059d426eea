package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm_backend/internal/pool/domain"
	poolservice "crm_backend/internal/pool/service"
	"crm_backend/platform/logger"
)

const defaultSweepInterval = time.Minute

// SweepLoop runs the escalation sweep in-process on a fixed interval. The API
// uses it when no Redis is configured for the asynq worker.
type SweepLoop struct {
	sweeper  Sweeper
	log      *logger.Logger
	interval time.Duration
}

func NewSweepLoop(sweeper Sweeper, log *logger.Logger, interval time.Duration) *SweepLoop {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SweepLoop{sweeper: sweeper, log: log, interval: interval}
}

func (l *SweepLoop) Run(ctx context.Context) {
	if l == nil || l.sweeper == nil {
		return
	}

	l.sweep(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(ctx)
		}
	}
}

func (l *SweepLoop) sweep(ctx context.Context) {
	_, err := l.sweeper.Sweep(ctx, poolservice.TriggerScheduler)
	if err != nil && !errors.Is(err, domain.ErrConfigurationMissing()) && ctx.Err() == nil {
		l.log.Warn("in-process pool sweep failed", "error", err)
	}
}

// SweepInterval reads the interval of an "@every <duration>" spec and falls
// back to one minute for other cron forms.
func SweepInterval(cron string) time.Duration {
	rest, ok := strings.CutPrefix(strings.TrimSpace(cron), "@every ")
	if !ok {
		return defaultSweepInterval
	}
	d, err := time.ParseDuration(strings.TrimSpace(rest))
	if err != nil || d <= 0 {
		return defaultSweepInterval
	}
	return d
}
