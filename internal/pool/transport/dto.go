package transport

import (
	"time"

	"github.com/google/uuid"
)

// ClaimLeadRequest carries the agent's position at claim time. Coordinates are
// optional for leads routed directly to the agent.
type ClaimLeadRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// UpdateConfigurationRequest replaces the thresholds and, when a user list is
// present, the full permission set of that pool.
type UpdateConfigurationRequest struct {
	RadiusMeters          *int        `json:"radiusMeters" validate:"required,min=0"`
	MinutesToPriorityPool *int        `json:"minutesToPriorityPool" validate:"required,min=0"`
	MinutesToGeneralPool  *int        `json:"minutesToGeneralPool" validate:"required,min=0"`
	PriorityUserIDs       []uuid.UUID `json:"priorityUserIds,omitempty"`
	GeneralUserIDs        []uuid.UUID `json:"generalUserIds,omitempty"`
}

// ReplacePermissionsRequest is the complete list of users for one pool.
// An empty list revokes everyone.
type ReplacePermissionsRequest struct {
	UserIDs []uuid.UUID `json:"userIds" validate:"required"`
}

// ConfigurationResponse echoes the stored configuration and permissions.
type ConfigurationResponse struct {
	RadiusMeters          int         `json:"radiusMeters"`
	MinutesToPriorityPool int         `json:"minutesToPriorityPool"`
	MinutesToGeneralPool  int         `json:"minutesToGeneralPool"`
	PriorityUserIDs       []uuid.UUID `json:"priorityUserIds"`
	GeneralUserIDs        []uuid.UUID `json:"generalUserIds"`
	UpdatedBy             *uuid.UUID  `json:"updatedBy,omitempty"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// PermittedPoolsResponse lists the pools the caller may claim from.
type PermittedPoolsResponse struct {
	Pools []string `json:"pools"`
}

// LeadResponse is a lead as seen by the pool screens.
type LeadResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ConsumerName        string     `json:"consumerName"`
	ConsumerPhone       string     `json:"consumerPhone"`
	Source              string     `json:"source,omitempty"`
	QualificationStatus string     `json:"qualificationStatus"`
	QualifiedForUserID  *uuid.UUID `json:"qualifiedForUserId,omitempty"`
	EnteredPoolAt       *time.Time `json:"enteredPoolAt,omitempty"`
	AssignedAgentID     *uuid.UUID `json:"assignedAgentId,omitempty"`
	AssignedAt          *time.Time `json:"assignedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// AssignableLeadsResponse groups the leads a caller may claim. Pool groups
// are empty when the caller lacks that pool's permission.
type AssignableLeadsResponse struct {
	ForMe        []LeadResponse `json:"forMe"`
	PriorityPool []LeadResponse `json:"priorityPool"`
	GeneralPool  []LeadResponse `json:"generalPool"`
}

// ClaimLeadResponse is the updated lead plus how the claim was admitted.
type ClaimLeadResponse struct {
	Lead                  LeadResponse `json:"lead"`
	Path                  string       `json:"path"`
	MatchedLocationID     *uuid.UUID   `json:"matchedLocationId,omitempty"`
	MatchedDistanceMeters *int         `json:"matchedDistanceMeters,omitempty"`
}

// SweepResponse acknowledges an escalation sweep.
type SweepResponse struct {
	Status     string `json:"status"`
	Skipped    bool   `json:"skipped,omitempty"`
	ToPriority int    `json:"toPriority"`
	ToGeneral  int    `json:"toGeneral"`
}
