package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transition is one state change applied to a lead.
type Transition struct {
	LeadID uuid.UUID
	From   Status
	To     Status
	At     time.Time
}

// Escalate applies the time-based transitions to a single lead in sweep
// order: waiting to priority first, then priority to general. A lead promoted
// by the first step is stamped with now, so it only continues to the general
// pool in the same call when the general threshold is zero.
func Escalate(lead Lead, cfg Configuration, now time.Time) (Lead, []Transition) {
	var transitions []Transition

	if _, ok := lead.Qualification.(Waiting); ok && !lead.CreatedAt.After(cfg.PriorityCutoff(now)) {
		lead, transitions = move(lead, Pooled{Pool: PoolPriority, EnteredAt: now}, now, transitions)
	}

	if p, ok := lead.Qualification.(Pooled); ok && p.Pool == PoolPriority && !p.EnteredAt.After(cfg.GeneralCutoff(now)) {
		lead, transitions = move(lead, Pooled{Pool: PoolGeneral, EnteredAt: now}, now, transitions)
	}

	return lead, transitions
}

func move(lead Lead, to Qualification, now time.Time, acc []Transition) (Lead, []Transition) {
	acc = append(acc, Transition{LeadID: lead.ID, From: lead.Status(), To: to.Status(), At: now})
	lead.Qualification = to
	lead.UpdatedAt = now
	return lead, acc
}
