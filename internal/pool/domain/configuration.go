package domain

import (
	"time"

	"github.com/google/uuid"
)

// Configuration is the singleton pool configuration, loaded once per sweep or
// claim and passed along explicitly.
type Configuration struct {
	// RadiusMeters is the default active radius given to new geofence
	// locations. Claims are checked against each location's own radius.
	RadiusMeters          int
	MinutesToPriorityPool int
	MinutesToGeneralPool  int
	UpdatedBy             *uuid.UUID
	UpdatedAt             time.Time
}

// Validate rejects negative thresholds. Zero means immediate escalation.
func (c Configuration) Validate() error {
	details := map[string]string{}
	if c.RadiusMeters < 0 {
		details["radiusMeters"] = "min=0"
	}
	if c.MinutesToPriorityPool < 0 {
		details["minutesToPriorityPool"] = "min=0"
	}
	if c.MinutesToGeneralPool < 0 {
		details["minutesToGeneralPool"] = "min=0"
	}
	if len(details) > 0 {
		return ErrValidation("thresholds must be non-negative integers", details)
	}
	return nil
}

// PriorityThreshold is the waiting time before a lead enters the priority pool.
func (c Configuration) PriorityThreshold() time.Duration {
	return time.Duration(c.MinutesToPriorityPool) * time.Minute
}

// GeneralThreshold is the priority pool dwell time before the general pool.
func (c Configuration) GeneralThreshold() time.Duration {
	return time.Duration(c.MinutesToGeneralPool) * time.Minute
}

// PriorityCutoff returns the latest created_at that is due for the priority pool at now.
func (c Configuration) PriorityCutoff(now time.Time) time.Time {
	return now.Add(-c.PriorityThreshold())
}

// GeneralCutoff returns the latest entered_pool_at that is due for the general pool at now.
func (c Configuration) GeneralCutoff(now time.Time) time.Time {
	return now.Add(-c.GeneralThreshold())
}
