// Package service implements administration of geofence check-in locations.
package service

import (
	"context"

	"github.com/google/uuid"

	"crm_backend/internal/geofence/repository"
	"crm_backend/internal/geofence/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/geo"
	"crm_backend/platform/logger"
	"crm_backend/platform/sanitize"
)

// DefaultRadiusProvider returns the radius applied to new locations that do
// not specify one. Zero means no default is configured.
type DefaultRadiusProvider interface {
	DefaultRadiusMeters(ctx context.Context) (int, error)
}

// Service provides business logic for geofence locations.
type Service struct {
	repo   repository.Repository
	radius DefaultRadiusProvider
	log    *logger.Logger
}

// New creates a new geofence service. radius may be nil.
func New(repo repository.Repository, radius DefaultRadiusProvider, log *logger.Logger) *Service {
	return &Service{repo: repo, radius: radius, log: log}
}

// List returns all locations, or only the active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) (transport.LocationListResponse, error) {
	items, err := s.repo.ListLocations(ctx, activeOnly)
	if err != nil {
		return transport.LocationListResponse{}, err
	}

	resp := transport.LocationListResponse{Items: make([]transport.LocationResponse, 0, len(items)), Total: len(items)}
	for _, item := range items {
		resp.Items = append(resp.Items, toLocationResponse(item))
	}
	return resp, nil
}

// ActiveLocations returns the raw active locations for the claim check.
func (s *Service) ActiveLocations(ctx context.Context) ([]repository.Location, error) {
	return s.repo.ListLocations(ctx, true)
}

// GetByID retrieves a location by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LocationResponse, error) {
	loc, err := s.repo.GetLocationByID(ctx, id)
	if err != nil {
		return transport.LocationResponse{}, err
	}
	return toLocationResponse(loc), nil
}

// Create adds a location, applying the default radius when none is given.
func (s *Service) Create(ctx context.Context, req transport.CreateLocationRequest) (transport.LocationResponse, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return transport.LocationResponse{}, validationError("name", "required")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return transport.LocationResponse{}, validationError("latitude", "required")
	}
	point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if !point.Valid() {
		return transport.LocationResponse{}, validationError("latitude", "range")
	}

	radius := 0
	if req.ActiveRadiusMeters != nil {
		radius = *req.ActiveRadiusMeters
	} else if s.radius != nil {
		def, err := s.radius.DefaultRadiusMeters(ctx)
		if err != nil {
			return transport.LocationResponse{}, err
		}
		radius = def
	}
	if radius <= 0 {
		return transport.LocationResponse{}, validationError("activeRadiusMeters", "min=1")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	loc, err := s.repo.CreateLocation(ctx, repository.CreateLocationParams{
		Name:               name,
		Latitude:           point.Latitude,
		Longitude:          point.Longitude,
		ActiveRadiusMeters: radius,
		IsActive:           active,
	})
	if err != nil {
		return transport.LocationResponse{}, err
	}

	s.log.Info("geofence location created", "id", loc.ID, "name", loc.Name, "radiusMeters", loc.ActiveRadiusMeters)
	return toLocationResponse(loc), nil
}

// Update changes the fields present in req.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLocationRequest) (transport.LocationResponse, error) {
	params := repository.UpdateLocationParams{
		ID:                 id,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		ActiveRadiusMeters: req.ActiveRadiusMeters,
		IsActive:           req.IsActive,
	}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return transport.LocationResponse{}, validationError("name", "required")
		}
		params.Name = &name
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return transport.LocationResponse{}, validationError("latitude", "range")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return transport.LocationResponse{}, validationError("longitude", "range")
	}
	if req.ActiveRadiusMeters != nil && *req.ActiveRadiusMeters <= 0 {
		return transport.LocationResponse{}, validationError("activeRadiusMeters", "min=1")
	}

	loc, err := s.repo.UpdateLocation(ctx, params)
	if err != nil {
		return transport.LocationResponse{}, err
	}

	s.log.Info("geofence location updated", "id", loc.ID, "active", loc.IsActive)
	return toLocationResponse(loc), nil
}

// SetActive turns a location on or off.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (transport.LocationResponse, error) {
	return s.Update(ctx, id, transport.UpdateLocationRequest{IsActive: &active})
}

// Delete removes a location.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteLocation(ctx, id); err != nil {
		return err
	}
	s.log.Info("geofence location deleted", "id", id)
	return nil
}

func validationError(field, rule string) error {
	return apperr.Validation("invalid location").WithDetails(map[string]string{field: rule})
}

func toLocationResponse(loc repository.Location) transport.LocationResponse {
	return transport.LocationResponse{
		ID:                 loc.ID,
		Name:               loc.Name,
		Latitude:           loc.Latitude,
		Longitude:          loc.Longitude,
		ActiveRadiusMeters: loc.ActiveRadiusMeters,
		IsActive:           loc.IsActive,
		CreatedAt:          loc.CreatedAt,
		UpdatedAt:          loc.UpdatedAt,
	}
}
