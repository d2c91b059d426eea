// Package domain holds the qualification pool state machine. Nothing in here
// touches storage or HTTP; services feed it snapshots and persist its output.
package domain

import (
	"fmt"
	"strings"
)

// Status is the persisted qualification status of a lead.
type Status string

const (
	StatusWaiting        Status = "waiting"
	StatusInPriorityPool Status = "in_priority_pool"
	StatusInGeneralPool  Status = "in_general_pool"
	StatusAssigned       Status = "assigned"
	// Lost and Won are set by the sales funnel and only observed here.
	StatusLost Status = "lost"
	StatusWon  Status = "won"
)

// ParseStatus validates a stored or user-supplied status string.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusWaiting, StatusInPriorityPool, StatusInGeneralPool, StatusAssigned, StatusLost, StatusWon:
		return s, nil
	default:
		return "", fmt.Errorf("unknown qualification status %q", raw)
	}
}

// IsPooled reports whether the status is one of the two pool states.
func (s Status) IsPooled() bool {
	return s == StatusInPriorityPool || s == StatusInGeneralPool
}

// Pool returns the pool a pooled status belongs to.
func (s Status) Pool() (PoolName, bool) {
	switch s {
	case StatusInPriorityPool:
		return PoolPriority, true
	case StatusInGeneralPool:
		return PoolGeneral, true
	default:
		return "", false
	}
}

// PoolName identifies one of the two fixed pools.
type PoolName string

const (
	PoolPriority PoolName = "priority"
	PoolGeneral  PoolName = "general"
)

// AllPools lists the pools in escalation order.
var AllPools = []PoolName{PoolPriority, PoolGeneral}

// ParsePoolName validates a pool name from a path parameter or request body.
func ParsePoolName(raw string) (PoolName, error) {
	switch p := PoolName(strings.ToLower(strings.TrimSpace(raw))); p {
	case PoolPriority, PoolGeneral:
		return p, nil
	default:
		return "", ErrUnknownPool(raw)
	}
}

// Status returns the lead status of residing in this pool.
func (p PoolName) Status() Status {
	if p == PoolGeneral {
		return StatusInGeneralPool
	}
	return StatusInPriorityPool
}
