package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm_backend/platform/apperr"
)

// ErrNotFound is returned when a lead does not exist.
var ErrNotFound = errors.New("lead not found")

// ActionLeadCreated is the activity action recorded on intake.
const ActionLeadCreated = "lead.created"

const (
	opCreate = "leads.repository.create"

	pgForeignKeyViolation = "23503"
)

// Lead is a lead row as seen by intake.
type Lead struct {
	ID                  uuid.UUID
	ConsumerName        string
	ConsumerPhone       string
	ConsumerEmail       *string
	Source              *string
	QualificationStatus string
	QualifiedForUserID  *uuid.UUID
	EnteredPoolAt       *time.Time
	AssignedAgentID     *uuid.UUID
	AssignedAt          *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Activity is one entry of a lead's audit trail.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ActorID   *uuid.UUID
	Action    string
	Meta      map[string]any
	CreatedAt time.Time
}

// CreateLeadParams contains data for creating a lead.
type CreateLeadParams struct {
	ConsumerName       string
	ConsumerPhone      string
	ConsumerEmail      *string
	Source             *string
	QualifiedForUserID *uuid.UUID
	ActorID            *uuid.UUID
}

// Repository persists leads and their activity trail.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, consumer_name, consumer_phone, consumer_email, source, qualification_status,
	qualified_for_user_id, entered_pool_at, assigned_agent_id, assigned_at, created_at, updated_at`

// Create inserts a lead in waiting together with its creation activity.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, fmt.Errorf("begin create lead: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lead, err := scanLead(tx.QueryRow(ctx, `
		INSERT INTO leads (consumer_name, consumer_phone, consumer_email, source, qualification_status, qualified_for_user_id)
		VALUES ($1, $2, $3, $4, 'waiting', $5)
		RETURNING `+leadColumns,
		params.ConsumerName, params.ConsumerPhone, params.ConsumerEmail, params.Source, params.QualifiedForUserID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Lead{}, apperr.Validation("qualifiedForUserId does not reference a user").
				WithOp(opCreate).
				WithDetails(map[string]string{"qualifiedForUserId": "exists"})
		}
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}

	meta, err := json.Marshal(map[string]any{
		"source":             lead.Source,
		"qualifiedForUserId": lead.QualifiedForUserID,
	})
	if err != nil {
		return Lead{}, fmt.Errorf("marshal lead activity: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_activity (lead_id, actor_id, action, meta, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)`,
		lead.ID, params.ActorID, ActionLeadCreated, meta, lead.CreatedAt,
	); err != nil {
		return Lead{}, fmt.Errorf("insert lead activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, fmt.Errorf("commit create lead: %w", err)
	}
	return lead, nil
}

// GetByID retrieves a lead by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// ListActivity returns the newest entries of a lead's trail first.
func (r *Repository) ListActivity(ctx context.Context, leadID uuid.UUID, limit int) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, actor_id, action, meta, created_at
		FROM lead_activity
		WHERE lead_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list lead activity: %w", err)
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var item Activity
		var meta []byte
		if err := rows.Scan(&item.ID, &item.LeadID, &item.ActorID, &item.Action, &meta, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead activity: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &item.Meta); err != nil {
				return nil, fmt.Errorf("decode lead activity meta: %w", err)
			}
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.ConsumerName, &lead.ConsumerPhone, &lead.ConsumerEmail, &lead.Source,
		&lead.QualificationStatus, &lead.QualifiedForUserID, &lead.EnteredPoolAt,
		&lead.AssignedAgentID, &lead.AssignedAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}
