// Package geofence provides the check-in location bounded context. Agents
// must stand within an active location's radius to claim pooled leads.
package geofence

import (
	"crm_backend/internal/geofence/handler"
	"crm_backend/internal/geofence/repository"
	"crm_backend/internal/geofence/service"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the geofence bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the geofence module.
func NewModule(pool *pgxpool.Pool, radius service.DefaultRadiusProvider, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, radius, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "geofence"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts geofence routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	adminGroup := ctx.Admin.Group("/geofence")
	adminGroup.GET("/locations", m.handler.List)
	adminGroup.GET("/locations/:id", m.handler.Get)
	adminGroup.POST("/locations", m.handler.Create)
	adminGroup.PUT("/locations/:id", m.handler.Update)
	adminGroup.PATCH("/locations/:id/active", m.handler.SetActive)
	adminGroup.DELETE("/locations/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
