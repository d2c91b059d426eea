package maps

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"
)

// Module wires the address lookup used when placing geofence locations.
type Module struct {
	handler *Handler
}

func NewModule(cfg config.MapsConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(NewService(cfg, log), val)}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/maps")
	group.GET("/address-lookup", m.handler.LookupAddress)
}

var _ apphttp.Module = (*Module)(nil)
