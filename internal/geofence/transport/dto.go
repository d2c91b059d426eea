package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLocationRequest creates a check-in location. ActiveRadiusMeters
// falls back to the pool's default radius when omitted.
type CreateLocationRequest struct {
	Name               string   `json:"name" validate:"required,min=1,max=120"`
	Latitude           *float64 `json:"latitude" validate:"required,latitude"`
	Longitude          *float64 `json:"longitude" validate:"required,longitude"`
	ActiveRadiusMeters *int     `json:"activeRadiusMeters,omitempty" validate:"omitempty,min=1,max=100000"`
	IsActive           *bool    `json:"isActive,omitempty"`
}

// UpdateLocationRequest changes the fields that are present.
type UpdateLocationRequest struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Latitude           *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude          *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	ActiveRadiusMeters *int     `json:"activeRadiusMeters,omitempty" validate:"omitempty,min=1,max=100000"`
	IsActive           *bool    `json:"isActive,omitempty"`
}

// SetActiveRequest toggles a location on or off.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// LocationResponse is a location as returned by the API.
type LocationResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	ActiveRadiusMeters int       `json:"activeRadiusMeters"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// LocationListResponse wraps a list of locations.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Total int                `json:"total"`
}
