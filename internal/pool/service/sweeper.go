package service

import (
	"context"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/repository"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"
)

// Sweep triggers, used in logs, metrics and activity metadata.
const (
	TriggerHTTP      = "http"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)

// SweepStore is the part of the repository the sweeper needs.
type SweepStore interface {
	GetConfiguration(ctx context.Context) (domain.Configuration, error)
	repository.SweepStore
}

// SweepResult summarises one sweep run.
type SweepResult struct {
	Skipped    bool
	ToPriority int
	ToGeneral  int
	Duration   time.Duration
}

// Sweeper applies the time-based escalations to every eligible lead.
type Sweeper struct {
	store   SweepStore
	lease   SweepLease
	bus     events.Bus
	metrics *metrics.Metrics
	log     *logger.Logger
	now     Clock
}

// NewSweeper creates a sweeper. lease, bus and m may be nil.
func NewSweeper(store SweepStore, lease SweepLease, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Sweeper {
	return &Sweeper{store: store, lease: lease, bus: bus, metrics: m, log: log, now: systemClock}
}

// WithClock replaces the time source.
func (s *Sweeper) WithClock(clock Clock) *Sweeper {
	s.now = clock
	return s
}

// Sweep runs one pass at the current time.
func (s *Sweeper) Sweep(ctx context.Context, trigger string) (SweepResult, error) {
	return s.SweepAt(ctx, trigger, s.now())
}

// SweepAt runs one pass as of now. The configuration is read once and never
// created here: without it nothing is escalated and ConfigurationMissing is
// returned. Both steps commit together or not at all.
func (s *Sweeper) SweepAt(ctx context.Context, trigger string, now time.Time) (SweepResult, error) {
	started := time.Now()

	if s.lease != nil {
		release, ok, err := s.lease.Acquire(ctx)
		if err != nil {
			// the conditional updates stay correct without the lease
			s.log.Warn("sweep lease unavailable, running unguarded", "error", err)
		} else if !ok {
			s.metrics.RecordSweep("skipped", 0, 0, 0)
			s.log.Info("sweep skipped, lease held elsewhere", "trigger", trigger)
			return SweepResult{Skipped: true}, nil
		} else {
			defer release(context.WithoutCancel(ctx))
		}
	}

	cfg, err := s.store.GetConfiguration(ctx)
	if err != nil {
		return s.failed(trigger, started, err)
	}

	res, err := s.store.EscalateLeads(ctx, repository.EscalateParams{
		Now:            now,
		PriorityCutoff: cfg.PriorityCutoff(now),
		GeneralCutoff:  cfg.GeneralCutoff(now),
		Trigger:        trigger,
	})
	if err != nil {
		return s.failed(trigger, started, err)
	}

	result := SweepResult{
		ToPriority: len(res.ToPriority),
		ToGeneral:  len(res.ToGeneral),
		Duration:   time.Since(started),
	}
	s.metrics.RecordSweep("ok", result.ToPriority, result.ToGeneral, result.Duration)
	s.log.WithContext(ctx).PoolSweep(trigger, result.ToPriority, result.ToGeneral, result.Duration, nil)

	if s.bus != nil && (result.ToPriority > 0 || result.ToGeneral > 0) {
		s.bus.Publish(ctx, events.LeadsEscalated{
			BaseEvent:  events.NewBaseEvent(),
			ToPriority: res.ToPriority,
			ToGeneral:  res.ToGeneral,
			Trigger:    trigger,
			SweptAt:    now,
		})
	}
	return result, nil
}

func (s *Sweeper) failed(trigger string, started time.Time, err error) (SweepResult, error) {
	took := time.Since(started)
	s.metrics.RecordSweep("error", 0, 0, took)
	s.log.PoolSweep(trigger, 0, 0, took, err)
	return SweepResult{}, err
}
