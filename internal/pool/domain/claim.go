package domain

import (
	"slices"
	"time"

	"crm_backend/platform/geo"

	"github.com/google/uuid"
)

// ClaimPath tells which rule allowed a claim.
type ClaimPath string

const (
	// ClaimPathDirect is a waiting lead pre-routed to the claiming agent.
	ClaimPathDirect ClaimPath = "direct"
	// ClaimPathPool is a lead taken from a pool the agent may access.
	ClaimPathPool ClaimPath = "pool"
)

// AuthorizeClaim decides whether agentID may claim a lead in state q. It does
// not look at the agent's position; pool claims must also pass CheckGeofence.
func AuthorizeClaim(q Qualification, agentID uuid.UUID, permitted []PoolName) (ClaimPath, error) {
	switch v := q.(type) {
	case Assigned:
		return "", ErrAlreadyAssigned()
	case Waiting:
		if v.RoutedTo(agentID) {
			return ClaimPathDirect, nil
		}
		return "", ErrNotClaimable(v.Status())
	case Pooled:
		if !slices.Contains(permitted, v.Pool) {
			return "", ErrPoolPermissionDenied(v.Pool)
		}
		return ClaimPathPool, nil
	case nil:
		return "", ErrNotClaimable(StatusWaiting)
	default:
		return "", ErrNotClaimable(q.Status())
	}
}

// Assign produces the assigned state for a successful claim.
func Assign(agentID uuid.UUID, now time.Time) Assigned {
	return Assigned{AgentID: agentID, At: now}
}

// Location is an active geofence reference point.
type Location struct {
	ID           uuid.UUID
	Name         string
	Point        geo.Point
	RadiusMeters int
}

// GeofenceMatch is the location that admitted the agent.
type GeofenceMatch struct {
	Location       Location
	DistanceMeters int
}

// CheckGeofence admits the agent when it is within the radius of at least one
// location. Distances are whole meters, compared inclusively.
func CheckGeofence(agent geo.Point, locations []Location) (GeofenceMatch, error) {
	if len(locations) == 0 {
		return GeofenceMatch{}, ErrNoActiveLocations()
	}

	var match *GeofenceMatch
	points := make([]geo.Point, len(locations))
	for i, loc := range locations {
		points[i] = loc.Point
		d := geo.DistanceMeters(agent, loc.Point)
		if d <= loc.RadiusMeters && (match == nil || d < match.DistanceMeters) {
			match = &GeofenceMatch{Location: loc, DistanceMeters: d}
		}
	}
	if match != nil {
		return *match, nil
	}

	idx, dist := geo.Nearest(agent, points)
	nearest := locations[idx]
	return GeofenceMatch{}, ErrOutOfRange(OutOfRangeDetails{
		NearestLocationID:   nearest.ID.String(),
		NearestLocationName: nearest.Name,
		DistanceMeters:      dist,
		RadiusMeters:        nearest.RadiusMeters,
	})
}
