package repository

import (
	"context"
	"errors"
	"fmt"

	"crm_backend/internal/pool/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Activity actions written to lead_activity.
const (
	ActionClaimed             = "pool.claimed"
	ActionEscalatedToPriority = "pool.escalated.priority"
	ActionEscalatedToGeneral  = "pool.escalated.general"
)

const pgForeignKeyViolation = "23503"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new pool repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetOrCreateConfiguration returns the singleton, inserting the zero-valued
// row and both named pools on first access.
func (r *Repo) GetOrCreateConfiguration(ctx context.Context) (domain.Configuration, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("begin configuration tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, ensureConfigurationQuery); err != nil {
		return domain.Configuration{}, fmt.Errorf("ensure configuration: %w", err)
	}
	if _, err := tx.Exec(ctx, ensurePoolsQuery, poolNames(domain.AllPools)); err != nil {
		return domain.Configuration{}, fmt.Errorf("ensure pools: %w", err)
	}

	cfg, err := scanConfiguration(tx.QueryRow(ctx, getConfigurationQuery))
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("get configuration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Configuration{}, fmt.Errorf("commit configuration tx: %w", err)
	}
	return cfg, nil
}

// GetConfiguration reads the singleton without creating it.
func (r *Repo) GetConfiguration(ctx context.Context) (domain.Configuration, error) {
	cfg, err := scanConfiguration(r.pool.QueryRow(ctx, getConfigurationQuery))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Configuration{}, domain.ErrConfigurationMissing()
		}
		return domain.Configuration{}, fmt.Errorf("get configuration: %w", err)
	}
	return cfg, nil
}

// UpdateConfiguration upserts the singleton and replaces the grants of each
// pool in grants. Nothing is kept when any step fails.
func (r *Repo) UpdateConfiguration(ctx context.Context, cfg domain.Configuration, grants map[domain.PoolName][]uuid.UUID) (domain.Configuration, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("begin configuration tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved, err := scanConfiguration(tx.QueryRow(ctx, saveConfigurationQuery,
		cfg.RadiusMeters, cfg.MinutesToPriorityPool, cfg.MinutesToGeneralPool, cfg.UpdatedBy,
	))
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("save configuration: %w", err)
	}

	for _, pool := range domain.AllPools {
		userIDs, ok := grants[pool]
		if !ok {
			continue
		}
		if err := replacePermissions(ctx, tx, pool, userIDs); err != nil {
			return domain.Configuration{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Configuration{}, fmt.Errorf("commit configuration tx: %w", err)
	}
	return saved, nil
}

// ReplacePermissions is a destructive set: the previous grants of pool are
// removed and userIDs become the complete list, in one transaction.
func (r *Repo) ReplacePermissions(ctx context.Context, pool domain.PoolName, userIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin permissions tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := replacePermissions(ctx, tx, pool, userIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit permissions tx: %w", err)
	}
	return nil
}

func replacePermissions(ctx context.Context, tx pgx.Tx, pool domain.PoolName, userIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, ensurePoolsQuery, poolNames(domain.AllPools)); err != nil {
		return fmt.Errorf("ensure pools: %w", err)
	}
	if _, err := tx.Exec(ctx, deletePermissionsQuery, string(pool)); err != nil {
		return fmt.Errorf("delete permissions: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, insertPermissionsQuery, string(pool), userIDs); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.ErrValidation("permission list references an unknown user", map[string]string{"userIds": "exists"})
		}
		return fmt.Errorf("insert permissions: %w", err)
	}
	return nil
}

// ListPermissions returns the grants of every pool.
func (r *Repo) ListPermissions(ctx context.Context) (map[domain.PoolName][]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, listPermissionsQuery)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.PoolName][]uuid.UUID, len(domain.AllPools))
	for _, p := range domain.AllPools {
		out[p] = []uuid.UUID{}
	}
	for rows.Next() {
		var (
			name   string
			userID uuid.UUID
		)
		if err := rows.Scan(&name, &userID); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out[domain.PoolName(name)] = append(out[domain.PoolName(name)], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}
	return out, nil
}

// PermittedPools returns the pools userID may claim from, priority first.
func (r *Repo) PermittedPools(ctx context.Context, userID uuid.UUID) ([]domain.PoolName, error) {
	rows, err := r.pool.Query(ctx, permittedPoolsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("permitted pools: %w", err)
	}
	defer rows.Close()

	pools := []domain.PoolName{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan pool name: %w", err)
		}
		pools = append(pools, domain.PoolName(name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool names: %w", err)
	}
	return pools, nil
}

// GetLead loads a single lead.
func (r *Repo) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, domain.ErrLeadNotFound()
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// ListRoutedTo lists waiting leads pre-routed to agentID, oldest first.
func (r *Repo) ListRoutedTo(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, listRoutedToQuery, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list routed leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

// ListInPool lists leads in pool, longest-waiting first.
func (r *Repo) ListInPool(ctx context.Context, pool domain.PoolName, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, listInPoolQuery, string(pool.Status()), limit)
	if err != nil {
		return nil, fmt.Errorf("list pool leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

// ClaimLead runs the conditional assignment and its activity row in one
// transaction. No row matched means another writer moved the lead first.
func (r *Repo) ClaimLead(ctx context.Context, params ClaimParams) (domain.Lead, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, false, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lead, err := scanLead(tx.QueryRow(ctx, claimLeadQuery,
		params.LeadID, params.AgentID, params.At, string(params.ExpectedStatus),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, false, nil
		}
		return domain.Lead{}, false, fmt.Errorf("claim lead: %w", err)
	}

	meta := map[string]any{
		"path":       string(params.Path),
		"fromStatus": string(params.ExpectedStatus),
	}
	for k, v := range params.Meta {
		meta[k] = v
	}
	if _, err := tx.Exec(ctx, insertActivityQuery, params.LeadID, params.AgentID, ActionClaimed, meta, params.At); err != nil {
		return domain.Lead{}, false, fmt.Errorf("insert claim activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, false, fmt.Errorf("commit claim tx: %w", err)
	}
	return lead, true, nil
}

// EscalateLeads runs both escalation steps in order inside one transaction,
// so the general step sees the leads the priority step just moved.
func (r *Repo) EscalateLeads(ctx context.Context, params EscalateParams) (EscalateResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return EscalateResult{}, fmt.Errorf("begin sweep tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	toPriority, err := collectIDs(ctx, tx, escalateToPriorityQuery, params.Now, params.PriorityCutoff)
	if err != nil {
		return EscalateResult{}, fmt.Errorf("escalate to priority: %w", err)
	}
	toGeneral, err := collectIDs(ctx, tx, escalateToGeneralQuery, params.Now, params.GeneralCutoff)
	if err != nil {
		return EscalateResult{}, fmt.Errorf("escalate to general: %w", err)
	}

	meta := map[string]any{"trigger": params.Trigger}
	if len(toPriority) > 0 {
		if _, err := tx.Exec(ctx, insertBulkActivityQuery, toPriority, ActionEscalatedToPriority, meta, params.Now); err != nil {
			return EscalateResult{}, fmt.Errorf("insert priority activity: %w", err)
		}
	}
	if len(toGeneral) > 0 {
		if _, err := tx.Exec(ctx, insertBulkActivityQuery, toGeneral, ActionEscalatedToGeneral, meta, params.Now); err != nil {
			return EscalateResult{}, fmt.Errorf("insert general activity: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return EscalateResult{}, fmt.Errorf("commit sweep tx: %w", err)
	}
	return EscalateResult{ToPriority: toPriority, ToGeneral: toGeneral}, nil
}

func collectIDs(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanConfiguration(row pgx.Row) (domain.Configuration, error) {
	var cfg domain.Configuration
	err := row.Scan(&cfg.RadiusMeters, &cfg.MinutesToPriorityPool, &cfg.MinutesToGeneralPool, &cfg.UpdatedBy, &cfg.UpdatedAt)
	return cfg, err
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead   domain.Lead
		record domain.Record
		source *string
	)
	err := row.Scan(
		&lead.ID, &lead.ConsumerName, &lead.ConsumerPhone, &source, &record.Status,
		&record.QualifiedForUserID, &record.EnteredPoolAt, &record.AssignedAgentID, &record.AssignedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	if source != nil {
		lead.Source = *source
	}

	q, err := domain.FromRecord(record)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", lead.ID, err)
	}
	lead.Qualification = q
	return lead, nil
}

func scanLeads(rows pgx.Rows) ([]domain.Lead, error) {
	leads := []domain.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func poolNames(pools []domain.PoolName) []string {
	out := make([]string, len(pools))
	for i, p := range pools {
		out[i] = string(p)
	}
	return out
}
