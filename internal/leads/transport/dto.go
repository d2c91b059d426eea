package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest creates a lead in waiting. QualifiedForUserID routes it
// to one agent until the priority threshold passes.
type CreateLeadRequest struct {
	ConsumerName       string     `json:"consumerName" validate:"required,min=1,max=200"`
	ConsumerPhone      string     `json:"consumerPhone" validate:"required,min=6,max=32"`
	ConsumerEmail      string     `json:"consumerEmail,omitempty" validate:"omitempty,email"`
	Source             string     `json:"source,omitempty" validate:"omitempty,max=80"`
	QualifiedForUserID *uuid.UUID `json:"qualifiedForUserId,omitempty"`
}

// LeadResponse is the lead returned by intake endpoints.
type LeadResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ConsumerName        string     `json:"consumerName"`
	ConsumerPhone       string     `json:"consumerPhone"`
	ConsumerEmail       *string    `json:"consumerEmail,omitempty"`
	Source              *string    `json:"source,omitempty"`
	QualificationStatus string     `json:"qualificationStatus"`
	QualifiedForUserID  *uuid.UUID `json:"qualifiedForUserId,omitempty"`
	EnteredPoolAt       *time.Time `json:"enteredPoolAt,omitempty"`
	AssignedAgentID     *uuid.UUID `json:"assignedAgentId,omitempty"`
	AssignedAt          *time.Time `json:"assignedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID        uuid.UUID      `json:"id"`
	ActorID   *uuid.UUID     `json:"actorId,omitempty"`
	Action    string         `json:"action"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ActivityListResponse wraps a lead's trail.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}
