package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm_backend/platform/apperr"
)

const locationNotFoundMessage = "location not found"

const locationColumns = `id, name, latitude, longitude, active_radius_meters, is_active, created_at, updated_at`

// Repo implements the geofence repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new geofence repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateLocation inserts a location.
func (r *Repo) CreateLocation(ctx context.Context, params CreateLocationParams) (Location, error) {
	query := `
		INSERT INTO geofence_locations (name, latitude, longitude, active_radius_meters, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + locationColumns

	loc, err := scanLocation(r.pool.QueryRow(ctx, query,
		params.Name, params.Latitude, params.Longitude, params.ActiveRadiusMeters, params.IsActive,
	))
	if err != nil {
		return Location{}, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

// UpdateLocation applies a partial update.
func (r *Repo) UpdateLocation(ctx context.Context, params UpdateLocationParams) (Location, error) {
	query := `
		UPDATE geofence_locations
		SET name = COALESCE($2, name),
			latitude = COALESCE($3, latitude),
			longitude = COALESCE($4, longitude),
			active_radius_meters = COALESCE($5, active_radius_meters),
			is_active = COALESCE($6, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + locationColumns

	loc, err := scanLocation(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Latitude, params.Longitude, params.ActiveRadiusMeters, params.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, apperr.NotFound(locationNotFoundMessage)
		}
		return Location{}, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}

// DeleteLocation removes a location.
func (r *Repo) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM geofence_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(locationNotFoundMessage)
	}
	return nil
}

// GetLocationByID retrieves a location by ID.
func (r *Repo) GetLocationByID(ctx context.Context, id uuid.UUID) (Location, error) {
	query := `SELECT ` + locationColumns + ` FROM geofence_locations WHERE id = $1`

	loc, err := scanLocation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, apperr.NotFound(locationNotFoundMessage)
		}
		return Location{}, fmt.Errorf("get location by id: %w", err)
	}
	return loc, nil
}

// ListLocations lists locations by name, optionally only the active ones.
func (r *Repo) ListLocations(ctx context.Context, activeOnly bool) ([]Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM geofence_locations
		WHERE ($1::boolean = false OR is_active)
		ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	items := make([]Location, 0)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return items, nil
}

func scanLocation(row pgx.Row) (Location, error) {
	var loc Location
	err := row.Scan(
		&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude,
		&loc.ActiveRadiusMeters, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt,
	)
	return loc, err
}
