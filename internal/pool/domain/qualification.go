package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Qualification is the lead's position in the state machine. Each variant
// carries only the fields that are meaningful for it, so a pooled lead cannot
// hold an agent and an assigned lead cannot hold a pool timestamp.
type Qualification interface {
	Status() Status
	qualification()
}

// Waiting is the entry state. QualifiedFor routes the lead to one agent.
type Waiting struct {
	QualifiedFor *uuid.UUID
}

// Pooled means the lead sits in a shared pool since EnteredAt.
type Pooled struct {
	Pool      PoolName
	EnteredAt time.Time
}

// Assigned is terminal for this subsystem.
type Assigned struct {
	AgentID uuid.UUID
	At      time.Time
}

// Closed covers funnel outcomes (lost, won) decided elsewhere.
type Closed struct {
	Outcome Status
}

func (Waiting) Status() Status  { return StatusWaiting }
func (p Pooled) Status() Status { return p.Pool.Status() }
func (Assigned) Status() Status { return StatusAssigned }
func (c Closed) Status() Status { return c.Outcome }

func (Waiting) qualification()  {}
func (Pooled) qualification()   {}
func (Assigned) qualification() {}
func (Closed) qualification()   {}

// RoutedTo reports whether a waiting lead is pre-routed to agentID.
func (w Waiting) RoutedTo(agentID uuid.UUID) bool {
	return w.QualifiedFor != nil && *w.QualifiedFor == agentID
}

// Record is the flat, nullable storage shape of a qualification.
type Record struct {
	Status             string
	QualifiedForUserID *uuid.UUID
	EnteredPoolAt      *time.Time
	AssignedAgentID    *uuid.UUID
	AssignedAt         *time.Time
}

// FromRecord rebuilds the qualification and rejects field combinations the
// state machine can never produce.
func FromRecord(r Record) (Qualification, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}

	switch status {
	case StatusWaiting:
		if r.EnteredPoolAt != nil || r.AssignedAgentID != nil {
			return nil, invalidRecord(status, "pool or agent fields set")
		}
		return Waiting{QualifiedFor: r.QualifiedForUserID}, nil
	case StatusInPriorityPool, StatusInGeneralPool:
		if r.EnteredPoolAt == nil {
			return nil, invalidRecord(status, "entered_pool_at missing")
		}
		if r.QualifiedForUserID != nil || r.AssignedAgentID != nil {
			return nil, invalidRecord(status, "routing or agent fields set")
		}
		pool, _ := status.Pool()
		return Pooled{Pool: pool, EnteredAt: *r.EnteredPoolAt}, nil
	case StatusAssigned:
		if r.AssignedAgentID == nil || r.AssignedAt == nil {
			return nil, invalidRecord(status, "agent or assigned_at missing")
		}
		if r.EnteredPoolAt != nil || r.QualifiedForUserID != nil {
			return nil, invalidRecord(status, "pool or routing fields set")
		}
		return Assigned{AgentID: *r.AssignedAgentID, At: *r.AssignedAt}, nil
	default:
		return Closed{Outcome: status}, nil
	}
}

// ToRecord flattens q for storage.
func ToRecord(q Qualification) Record {
	r := Record{Status: string(q.Status())}
	switch v := q.(type) {
	case Waiting:
		r.QualifiedForUserID = v.QualifiedFor
	case Pooled:
		at := v.EnteredAt
		r.EnteredPoolAt = &at
	case Assigned:
		agent, at := v.AgentID, v.At
		r.AssignedAgentID = &agent
		r.AssignedAt = &at
	}
	return r
}

func invalidRecord(status Status, reason string) error {
	return fmt.Errorf("invalid %s qualification record: %s", status, reason)
}

// Lead is the qualifiable entity as seen by the pool.
type Lead struct {
	ID            uuid.UUID
	ConsumerName  string
	ConsumerPhone string
	Source        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Qualification Qualification
}

// Status is a shortcut for l.Qualification.Status().
func (l Lead) Status() Status {
	if l.Qualification == nil {
		return StatusWaiting
	}
	return l.Qualification.Status()
}
