package adapters

import (
	"context"
	"errors"

	geofenceservice "crm_backend/internal/geofence/service"
	pooldomain "crm_backend/internal/pool/domain"
)

// ConfigurationReader reads the pool configuration without creating it.
type ConfigurationReader interface {
	GetConfiguration(ctx context.Context) (pooldomain.Configuration, error)
}

// PoolDefaultRadius serves the pool's configured radius as the default for
// new geofence locations.
type PoolDefaultRadius struct {
	reader ConfigurationReader
}

// NewPoolDefaultRadius creates a new default radius adapter.
func NewPoolDefaultRadius(reader ConfigurationReader) *PoolDefaultRadius {
	return &PoolDefaultRadius{reader: reader}
}

// DefaultRadiusMeters returns 0 when the pool has not been configured yet.
func (a *PoolDefaultRadius) DefaultRadiusMeters(ctx context.Context) (int, error) {
	cfg, err := a.reader.GetConfiguration(ctx)
	if errors.Is(err, pooldomain.ErrConfigurationMissing()) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cfg.RadiusMeters, nil
}

// Compile-time check.
var _ geofenceservice.DefaultRadiusProvider = (*PoolDefaultRadius)(nil)
