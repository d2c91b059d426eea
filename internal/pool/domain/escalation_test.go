package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEscalateFollowsTimedScenario(t *testing.T) {
	cfg := Configuration{MinutesToPriorityPool: 30, MinutesToGeneralPool: 60}
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lead := Lead{ID: uuid.New(), CreatedAt: t0, Qualification: Waiting{}}

	lead, moved := Escalate(lead, cfg, t0.Add(29*time.Minute))
	if len(moved) != 0 || lead.Status() != StatusWaiting {
		t.Fatalf("expected lead to stay waiting at T0+29m, got %s", lead.Status())
	}

	at31 := t0.Add(31 * time.Minute)
	lead, moved = Escalate(lead, cfg, at31)
	if len(moved) != 1 || lead.Status() != StatusInPriorityPool {
		t.Fatalf("expected priority pool at T0+31m, got %s", lead.Status())
	}
	if p := lead.Qualification.(Pooled); !p.EnteredAt.Equal(at31) {
		t.Fatalf("expected enteredPoolAt=%s, got %s", at31, p.EnteredAt)
	}

	lead, moved = Escalate(lead, cfg, t0.Add(90*time.Minute))
	if len(moved) != 0 {
		t.Fatalf("expected no move at 59 minutes in pool, got %v", moved)
	}

	lead, moved = Escalate(lead, cfg, t0.Add(92*time.Minute))
	if len(moved) != 1 || lead.Status() != StatusInGeneralPool {
		t.Fatalf("expected general pool at T0+92m, got %s", lead.Status())
	}
	if moved[0].From != StatusInPriorityPool || moved[0].To != StatusInGeneralPool {
		t.Fatalf("unexpected transition %+v", moved[0])
	}
}

func TestEscalateClearsDirectRouting(t *testing.T) {
	agent := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lead := Lead{ID: uuid.New(), CreatedAt: now.Add(-time.Hour), Qualification: Waiting{QualifiedFor: &agent}}

	lead, _ = Escalate(lead, Configuration{MinutesToPriorityPool: 10, MinutesToGeneralPool: 10}, now)

	if _, ok := lead.Qualification.(Pooled); !ok {
		t.Fatalf("expected pooled lead, got %T", lead.Qualification)
	}
	if ToRecord(lead.Qualification).QualifiedForUserID != nil {
		t.Fatal("expected routing to be cleared when entering the priority pool")
	}
}

func TestEscalateZeroThresholdsMoveImmediately(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lead := Lead{ID: uuid.New(), CreatedAt: now, Qualification: Waiting{}}

	lead, moved := Escalate(lead, Configuration{}, now)

	if len(moved) != 2 || lead.Status() != StatusInGeneralPool {
		t.Fatalf("expected both steps with zero thresholds, got %d moves and %s", len(moved), lead.Status())
	}
}

func TestEscalateIsIdempotentAndLeavesOtherStatesAlone(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cfg := Configuration{MinutesToPriorityPool: 5, MinutesToGeneralPool: 60}
	lead := Lead{ID: uuid.New(), CreatedAt: now.Add(-10 * time.Minute), Qualification: Waiting{}}

	lead, first := Escalate(lead, cfg, now)
	lead, second := Escalate(lead, cfg, now.Add(time.Second))
	if len(first) != 1 || len(second) != 0 || lead.Status() != StatusInPriorityPool {
		t.Fatalf("expected exactly one escalation, got %d then %d", len(first), len(second))
	}

	for _, q := range []Qualification{Assigned{AgentID: uuid.New(), At: now}, Closed{Outcome: StatusLost}, Pooled{Pool: PoolGeneral, EnteredAt: now.Add(-48 * time.Hour)}} {
		_, moved := Escalate(Lead{ID: uuid.New(), CreatedAt: now.Add(-48 * time.Hour), Qualification: q}, Configuration{}, now)
		if len(moved) != 0 {
			t.Errorf("%T: expected no transition, got %v", q, moved)
		}
	}
}
