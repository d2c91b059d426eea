// Package management handles lead intake and lookup.
// New leads always start in waiting; everything after that belongs to the
// pool context.
package management

import (
	"context"
	"errors"
	"strings"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const activityLimit = 100

// Repository defines the data access needed by the management service.
type Repository interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ListActivity(ctx context.Context, leadID uuid.UUID, limit int) ([]repository.Activity, error)
}

// Service handles lead intake.
type Service struct {
	repo   Repository
	bus    events.Bus
	region string
	log    *logger.Logger
}

// New creates a new lead management service. region is the default phone
// region for numbers without a country prefix.
func New(repo Repository, bus events.Bus, region string, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, region: region, log: log}
}

// Create stores a new waiting lead and publishes LeadCreated.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	name := sanitize.Text(req.ConsumerName)
	if name == "" {
		return transport.LeadResponse{}, apperr.Validation("consumer name is required").
			WithDetails(map[string]string{"consumerName": "required"})
	}
	if req.QualifiedForUserID != nil && *req.QualifiedForUserID == uuid.Nil {
		return transport.LeadResponse{}, apperr.Validation("qualifiedForUserId is invalid").
			WithDetails(map[string]string{"qualifiedForUserId": "uuid"})
	}

	params := repository.CreateLeadParams{
		ConsumerName:       name,
		ConsumerPhone:      phone.NormalizeE164(req.ConsumerPhone, s.region),
		QualifiedForUserID: req.QualifiedForUserID,
	}
	if actorID != uuid.Nil {
		params.ActorID = &actorID
	}
	if email := strings.TrimSpace(req.ConsumerEmail); email != "" {
		params.ConsumerEmail = &email
	}
	if source := strings.TrimSpace(req.Source); source != "" {
		params.Source = &source
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.WithContext(ctx).Info("lead created", "leadId", lead.ID, "routed", lead.QualifiedForUserID != nil)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent:          events.NewBaseEvent(),
			LeadID:             lead.ID,
			QualifiedForUserID: lead.QualifiedForUserID,
			Source:             strings.TrimSpace(req.Source),
			ConsumerName:       lead.ConsumerName,
			ConsumerPhone:      lead.ConsumerPhone,
		})
	}
	return ToLeadResponse(lead), nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// ListActivity returns the lead's audit trail, newest first.
func (s *Service) ListActivity(ctx context.Context, id uuid.UUID) (transport.ActivityListResponse, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return transport.ActivityListResponse{}, err
	}

	items, err := s.repo.ListActivity(ctx, id, activityLimit)
	if err != nil {
		return transport.ActivityListResponse{}, err
	}

	resp := transport.ActivityListResponse{Items: make([]transport.ActivityResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, transport.ActivityResponse{
			ID:        item.ID,
			ActorID:   item.ActorID,
			Action:    item.Action,
			Meta:      item.Meta,
			CreatedAt: item.CreatedAt,
		})
	}
	return resp, nil
}
