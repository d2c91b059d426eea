package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Location is a check-in point agents must be near to claim pooled leads.
type Location struct {
	ID                 uuid.UUID `db:"id"`
	Name               string    `db:"name"`
	Latitude           float64   `db:"latitude"`
	Longitude          float64   `db:"longitude"`
	ActiveRadiusMeters int       `db:"active_radius_meters"`
	IsActive           bool      `db:"is_active"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// CreateLocationParams contains data for creating a location.
type CreateLocationParams struct {
	Name               string
	Latitude           float64
	Longitude          float64
	ActiveRadiusMeters int
	IsActive           bool
}

// UpdateLocationParams updates the non-nil fields of a location.
type UpdateLocationParams struct {
	ID                 uuid.UUID
	Name               *string
	Latitude           *float64
	Longitude          *float64
	ActiveRadiusMeters *int
	IsActive           *bool
}

// Repository defines persistence for geofence locations.
type Repository interface {
	CreateLocation(ctx context.Context, params CreateLocationParams) (Location, error)
	UpdateLocation(ctx context.Context, params UpdateLocationParams) (Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
	GetLocationByID(ctx context.Context, id uuid.UUID) (Location, error)
	ListLocations(ctx context.Context, activeOnly bool) ([]Location, error)
}
