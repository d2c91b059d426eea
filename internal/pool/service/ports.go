// Package service implements the qualification pool use cases: configuration
// and permissions, the claim path, the escalation sweep and assignable listing.
package service

import (
	"context"
	"time"

	"crm_backend/internal/pool/domain"
)

// LocationProvider returns the geofence locations that are currently active.
// The geofence module satisfies it through an adapter.
type LocationProvider interface {
	ActiveLocations(ctx context.Context) ([]domain.Location, error)
}

// SweepLease is an optional cross-process mutex for the sweep. Correctness
// does not depend on it; it only keeps overlapping triggers from doing
// redundant work.
type SweepLease interface {
	// Acquire returns ok=false when another holder owns the lease.
	Acquire(ctx context.Context) (release func(context.Context), ok bool, err error)
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
