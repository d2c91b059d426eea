// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"context"
	"time"

	"crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// SubscribeTo registers fn for one concrete event type.
func SubscribeTo[E Event](bus Bus, fn func(ctx context.Context, event E) error) {
	events.SubscribeTo(bus, fn)
}

// Event names are the bus routing keys.
const (
	NameLeadCreated    = "leads.lead.created"
	NameLeadClaimed    = "pool.lead.claimed"
	NameLeadsEscalated = "pool.leads.escalated"
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters qualification.
type LeadCreated struct {
	BaseEvent
	LeadID             uuid.UUID  `json:"leadId"`
	QualifiedForUserID *uuid.UUID `json:"qualifiedForUserId,omitempty"`
	Source             string     `json:"source,omitempty"`
	ConsumerName       string     `json:"consumerName"`
	ConsumerPhone      string     `json:"consumerPhone"`
}

func (e LeadCreated) EventName() string { return NameLeadCreated }

// =============================================================================
// Pool Domain Events
// =============================================================================

// LeadClaimed is published after an agent successfully claims a lead.
type LeadClaimed struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	AgentID    uuid.UUID `json:"agentId"`
	FromStatus string    `json:"fromStatus"`
	Path       string    `json:"path"` // "direct" or "pool"
	ClaimedAt  time.Time `json:"claimedAt"`
}

func (e LeadClaimed) EventName() string { return NameLeadClaimed }

// LeadsEscalated is published after a sweep moved at least one lead.
type LeadsEscalated struct {
	BaseEvent
	ToPriority []uuid.UUID `json:"toPriority"`
	ToGeneral  []uuid.UUID `json:"toGeneral"`
	Trigger    string      `json:"trigger"`
	SweptAt    time.Time   `json:"sweptAt"`
}

func (e LeadsEscalated) EventName() string { return NameLeadsEscalated }
