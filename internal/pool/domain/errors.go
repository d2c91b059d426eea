package domain

import (
	"crm_backend/platform/apperr"
)

// Stable error codes returned to API clients.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeAlreadyAssigned      = "ALREADY_ASSIGNED"
	CodeNoActiveLocations    = "NO_ACTIVE_LOCATIONS"
	CodeOutOfRange           = "OUT_OF_RANGE"
	CodeConfigurationMissing = "CONFIGURATION_MISSING"
	CodePoolPermissionDenied = "POOL_PERMISSION_DENIED"
	CodeNotClaimable         = "NOT_CLAIMABLE"
	CodeClaimContention      = "CLAIM_CONTENTION"
	CodeNotFound             = "NOT_FOUND"
)

// Constructors return a fresh value every call because WithDetails mutates.
// Compare with errors.Is(err, ErrAlreadyAssigned()); *apperr.Error matches by code.

func ErrValidation(message string, details map[string]string) *apperr.Error {
	err := apperr.Validation(message)
	if len(details) > 0 {
		err = err.WithDetails(details)
	}
	return err
}

func ErrAlreadyAssigned() *apperr.Error {
	return apperr.Conflict("lead no longer available").WithCode(CodeAlreadyAssigned)
}

func ErrNoActiveLocations() *apperr.Error {
	return apperr.Unprocessable("no active check-in locations are configured").WithCode(CodeNoActiveLocations)
}

// OutOfRangeDetails tells the agent how far the closest location is.
type OutOfRangeDetails struct {
	NearestLocationID   string `json:"nearestLocationId"`
	NearestLocationName string `json:"nearestLocationName"`
	DistanceMeters      int    `json:"distanceMeters"`
	RadiusMeters        int    `json:"radiusMeters"`
}

func ErrOutOfRange(details OutOfRangeDetails) *apperr.Error {
	return apperr.Unprocessable("you are outside every active check-in location").
		WithCode(CodeOutOfRange).
		WithDetails(details)
}

func ErrConfigurationMissing() *apperr.Error {
	return apperr.Unprocessable("pool configuration has not been set up").WithCode(CodeConfigurationMissing)
}

func ErrPoolPermissionDenied(pool PoolName) *apperr.Error {
	return apperr.Forbidden("no permission for the "+string(pool)+" pool").
		WithCode(CodePoolPermissionDenied).
		WithDetails(map[string]string{"pool": string(pool)})
}

func ErrNotClaimable(status Status) *apperr.Error {
	return apperr.Conflict("lead cannot be claimed in its current state").
		WithCode(CodeNotClaimable).
		WithDetails(map[string]string{"status": string(status)})
}

func ErrClaimContention() *apperr.Error {
	return apperr.Conflict("lead changed while claiming, try again").WithCode(CodeClaimContention)
}

func ErrLeadNotFound() *apperr.Error {
	return apperr.NotFound("lead not found")
}

func ErrUnknownPool(raw string) *apperr.Error {
	return ErrValidation("unknown pool", map[string]string{"pool": raw})
}
