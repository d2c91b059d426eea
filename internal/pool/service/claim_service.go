package service

import (
	"context"
	"strings"

	"crm_backend/internal/events"
	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/repository"
	"crm_backend/internal/pool/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/geo"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"

	"github.com/google/uuid"
)

// maxClaimAttempts bounds re-evaluation when a lead moves between pools
// while it is being claimed.
const maxClaimAttempts = 3

// ClaimRequest is a claim attempt by an authenticated agent.
type ClaimRequest struct {
	LeadID   uuid.UUID
	AgentID  uuid.UUID
	Position *geo.Point
}

// ClaimStore is the part of the repository the claim path needs.
type ClaimStore interface {
	repository.LeadStore
	PermittedPools(ctx context.Context, userID uuid.UUID) ([]domain.PoolName, error)
}

// ClaimService is the only write path into the assigned state.
type ClaimService struct {
	store     ClaimStore
	locations LocationProvider
	bus       events.Bus
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       Clock
}

// NewClaimService creates a claim service. bus and m may be nil.
func NewClaimService(store ClaimStore, locations LocationProvider, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *ClaimService {
	return &ClaimService{store: store, locations: locations, bus: bus, metrics: m, log: log, now: systemClock}
}

// WithClock replaces the time source.
func (s *ClaimService) WithClock(clock Clock) *ClaimService {
	s.now = clock
	return s
}

// Claim validates eligibility against a fresh read and applies a conditional
// assignment. When the conditional write loses a race the lead is read again:
// an assigned lead yields AlreadyAssigned, a lead that moved pools is
// re-evaluated against its new pool.
func (s *ClaimService) Claim(ctx context.Context, req ClaimRequest) (transport.ClaimLeadResponse, error) {
	if req.Position != nil && !req.Position.Valid() {
		return transport.ClaimLeadResponse{}, domain.ErrValidation("invalid coordinates", map[string]string{
			"latitude":  "latitude",
			"longitude": "longitude",
		})
	}

	var permitted []domain.PoolName
	permittedLoaded := false
	lastPath := domain.ClaimPathPool

	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		lead, err := s.store.GetLead(ctx, req.LeadID)
		if err != nil {
			return transport.ClaimLeadResponse{}, err
		}

		if lead.Status().IsPooled() && !permittedLoaded {
			if permitted, err = s.store.PermittedPools(ctx, req.AgentID); err != nil {
				return transport.ClaimLeadResponse{}, err
			}
			permittedLoaded = true
		}

		path, err := domain.AuthorizeClaim(lead.Qualification, req.AgentID, permitted)
		if err != nil {
			return transport.ClaimLeadResponse{}, s.fail(ctx, req, pathFor(lead), err)
		}
		lastPath = path

		var match *domain.GeofenceMatch
		if path == domain.ClaimPathPool {
			if match, err = s.checkPosition(ctx, req.Position); err != nil {
				return transport.ClaimLeadResponse{}, s.fail(ctx, req, path, err)
			}
		}

		params := repository.ClaimParams{
			LeadID:         lead.ID,
			AgentID:        req.AgentID,
			ExpectedStatus: lead.Status(),
			Path:           path,
			At:             s.now(),
		}
		if match != nil {
			params.Meta = map[string]any{
				"locationId":     match.Location.ID,
				"distanceMeters": match.DistanceMeters,
			}
		}

		claimed, ok, err := s.store.ClaimLead(ctx, params)
		if err != nil {
			return transport.ClaimLeadResponse{}, err
		}
		if !ok {
			s.log.Debug("claim lost conditional write, re-reading lead", "leadId", req.LeadID, "attempt", attempt)
			continue
		}

		s.succeed(ctx, req, lead.Status(), path, params)
		return toClaimResponse(claimed, path, match), nil
	}

	return transport.ClaimLeadResponse{}, s.fail(ctx, req, lastPath, domain.ErrClaimContention())
}

func (s *ClaimService) checkPosition(ctx context.Context, pos *geo.Point) (*domain.GeofenceMatch, error) {
	if pos == nil {
		return nil, domain.ErrValidation("latitude and longitude are required for pool claims", map[string]string{
			"latitude":  "required",
			"longitude": "required",
		})
	}
	locations, err := s.locations.ActiveLocations(ctx)
	if err != nil {
		return nil, err
	}
	match, err := domain.CheckGeofence(*pos, locations)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *ClaimService) succeed(ctx context.Context, req ClaimRequest, from domain.Status, path domain.ClaimPath, params repository.ClaimParams) {
	s.metrics.RecordClaim(string(path), "success")
	s.log.WithContext(ctx).LeadClaim(req.LeadID.String(), req.AgentID.String(), string(path), "success")

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadClaimed{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     req.LeadID,
			AgentID:    req.AgentID,
			FromStatus: string(from),
			Path:       string(path),
			ClaimedAt:  params.At,
		})
	}
}

func (s *ClaimService) fail(ctx context.Context, req ClaimRequest, path domain.ClaimPath, err error) error {
	outcome := strings.ToLower(apperr.GetCode(err))
	if outcome == "" {
		outcome = "error"
	}
	s.metrics.RecordClaim(string(path), outcome)
	s.log.WithContext(ctx).LeadClaim(req.LeadID.String(), req.AgentID.String(), string(path), outcome)
	return err
}

func pathFor(lead domain.Lead) domain.ClaimPath {
	if lead.Status() == domain.StatusWaiting {
		return domain.ClaimPathDirect
	}
	return domain.ClaimPathPool
}

func toClaimResponse(lead domain.Lead, path domain.ClaimPath, match *domain.GeofenceMatch) transport.ClaimLeadResponse {
	resp := transport.ClaimLeadResponse{
		Lead: toLeadResponse(lead),
		Path: string(path),
	}
	if match != nil {
		id, dist := match.Location.ID, match.DistanceMeters
		resp.MatchedLocationID = &id
		resp.MatchedDistanceMeters = &dist
	}
	return resp
}
