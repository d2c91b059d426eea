// Package adapters contains adapters that bridge different bounded contexts.
// These adapters implement interfaces defined by consuming domains while
// wrapping services from providing domains.
package adapters

import (
	"context"

	geofencerepo "crm_backend/internal/geofence/repository"
	pooldomain "crm_backend/internal/pool/domain"
	poolservice "crm_backend/internal/pool/service"
	"crm_backend/platform/geo"
)

// ActiveLocationSource is the geofence side of the claim check.
type ActiveLocationSource interface {
	ActiveLocations(ctx context.Context) ([]geofencerepo.Location, error)
}

// GeofenceLocations adapts geofence locations to the pool's LocationProvider.
type GeofenceLocations struct {
	source ActiveLocationSource
}

// NewGeofenceLocations creates a new geofence locations adapter.
func NewGeofenceLocations(source ActiveLocationSource) *GeofenceLocations {
	return &GeofenceLocations{source: source}
}

// ActiveLocations returns the active locations with their own radius.
func (a *GeofenceLocations) ActiveLocations(ctx context.Context) ([]pooldomain.Location, error) {
	items, err := a.source.ActiveLocations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]pooldomain.Location, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		out = append(out, pooldomain.Location{
			ID:           item.ID,
			Name:         item.Name,
			Point:        geo.Point{Latitude: item.Latitude, Longitude: item.Longitude},
			RadiusMeters: item.ActiveRadiusMeters,
		})
	}
	return out, nil
}

// Compile-time check.
var _ poolservice.LocationProvider = (*GeofenceLocations)(nil)
