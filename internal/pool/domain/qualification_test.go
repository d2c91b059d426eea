package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFromRecordRejectsInvalidCombinations(t *testing.T) {
	agent := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"waiting plain", Record{Status: "waiting"}, false},
		{"waiting routed", Record{Status: "waiting", QualifiedForUserID: &agent}, false},
		{"waiting with pool stamp", Record{Status: "waiting", EnteredPoolAt: &now}, true},
		{"pool without stamp", Record{Status: "in_priority_pool"}, true},
		{"pool with routing", Record{Status: "in_general_pool", EnteredPoolAt: &now, QualifiedForUserID: &agent}, true},
		{"pool ok", Record{Status: "in_general_pool", EnteredPoolAt: &now}, false},
		{"assigned without agent", Record{Status: "assigned", AssignedAt: &now}, true},
		{"assigned with leftover pool stamp", Record{Status: "assigned", AssignedAgentID: &agent, AssignedAt: &now, EnteredPoolAt: &now}, true},
		{"assigned ok", Record{Status: "assigned", AssignedAgentID: &agent, AssignedAt: &now}, false},
		{"lost", Record{Status: "lost"}, false},
		{"unknown status", Record{Status: "archived"}, true},
	}

	for _, tc := range tests {
		_, err := FromRecord(tc.record)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestToRecordRoundTripsEachVariant(t *testing.T) {
	agent := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	variants := []Qualification{
		Waiting{},
		Waiting{QualifiedFor: &agent},
		Pooled{Pool: PoolPriority, EnteredAt: now},
		Pooled{Pool: PoolGeneral, EnteredAt: now},
		Assigned{AgentID: agent, At: now},
		Closed{Outcome: StatusWon},
	}

	for _, q := range variants {
		got, err := FromRecord(ToRecord(q))
		if err != nil {
			t.Fatalf("%T: unexpected error %v", q, err)
		}
		if got.Status() != q.Status() {
			t.Errorf("%T: expected status %s, got %s", q, q.Status(), got.Status())
		}
	}
}

func TestParsePoolName(t *testing.T) {
	if p, err := ParsePoolName(" Priority "); err != nil || p != PoolPriority {
		t.Fatalf("expected priority, got %q (%v)", p, err)
	}
	if _, err := ParsePoolName("vip"); err == nil {
		t.Fatal("expected unknown pool to fail")
	}
	if PoolGeneral.Status() != StatusInGeneralPool {
		t.Fatalf("unexpected status for general pool: %s", PoolGeneral.Status())
	}
}
