// Package leads provides the lead intake bounded context module.
// This file defines the module that encapsulates leads setup and route registration.
package leads

import (
	"context"

	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/leads/handler"
	"crm_backend/internal/leads/management"
	"crm_backend/internal/leads/repository"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.LeadsConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	mgmtSvc := management.New(repo, eventBus, cfg.GetPhoneDefaultRegion(), log)

	// Claims are written by the pool context; intake only keeps a log line.
	events.SubscribeTo(eventBus, func(ctx context.Context, e events.LeadClaimed) error {
		log.WithContext(ctx).Info("lead claimed", "leadId", e.LeadID, "agentId", e.AgentID, "path", e.Path, "eventId", e.EventID())
		return nil
	})

	return &Module{
		handler: handler.New(mgmtSvc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
