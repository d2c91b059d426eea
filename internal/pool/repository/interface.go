package repository

import (
	"context"
	"time"

	"crm_backend/internal/pool/domain"

	"github.com/google/uuid"
)

// ClaimParams describes a conditional assignment. The write only applies while
// the lead still has ExpectedStatus (and, for the direct path, is still routed
// to AgentID).
type ClaimParams struct {
	LeadID         uuid.UUID
	AgentID        uuid.UUID
	ExpectedStatus domain.Status
	Path           domain.ClaimPath
	At             time.Time
	// Activity metadata, e.g. the matched location and distance.
	Meta map[string]any
}

// EscalateParams carries one configuration snapshot evaluated at Now.
type EscalateParams struct {
	Now            time.Time
	PriorityCutoff time.Time
	GeneralCutoff  time.Time
	Trigger        string
}

// EscalateResult lists the leads moved by each ordered step.
type EscalateResult struct {
	ToPriority []uuid.UUID
	ToGeneral  []uuid.UUID
}

// ConfigurationStore reads and writes the configuration singleton.
type ConfigurationStore interface {
	// GetOrCreateConfiguration lazily creates the singleton and both pools.
	GetOrCreateConfiguration(ctx context.Context) (domain.Configuration, error)
	// GetConfiguration never creates; a missing row is ConfigurationMissing.
	GetConfiguration(ctx context.Context) (domain.Configuration, error)
	// UpdateConfiguration upserts the singleton and replaces the grants of
	// every pool present in grants, in one transaction.
	UpdateConfiguration(ctx context.Context, cfg domain.Configuration, grants map[domain.PoolName][]uuid.UUID) (domain.Configuration, error)
}

// PermissionStore manages pool membership.
type PermissionStore interface {
	// ReplacePermissions drops every grant of pool and inserts userIDs, atomically.
	ReplacePermissions(ctx context.Context, pool domain.PoolName, userIDs []uuid.UUID) error
	ListPermissions(ctx context.Context) (map[domain.PoolName][]uuid.UUID, error)
	PermittedPools(ctx context.Context, userID uuid.UUID) ([]domain.PoolName, error)
}

// LeadStore reads leads and applies claims.
type LeadStore interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ListRoutedTo(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.Lead, error)
	ListInPool(ctx context.Context, pool domain.PoolName, limit int) ([]domain.Lead, error)
	// ClaimLead returns ok=false without error when the conditional update
	// matched no row because the lead moved in the meantime.
	ClaimLead(ctx context.Context, params ClaimParams) (lead domain.Lead, ok bool, err error)
}

// SweepStore applies the time-based escalations.
type SweepStore interface {
	EscalateLeads(ctx context.Context, params EscalateParams) (EscalateResult, error)
}

// Repository combines all pool repository operations.
type Repository interface {
	ConfigurationStore
	PermissionStore
	LeadStore
	SweepStore
}
