// Package pool provides the lead qualification pool bounded context: routing
// of new leads, timed escalation into the priority and general pools and the
// geofenced claim that assigns a lead to exactly one agent.
package pool

import (
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/pool/handler"
	"crm_backend/internal/pool/repository"
	"crm_backend/internal/pool/service"
	"crm_backend/platform/config"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pool bounded context module implementing http.Module.
type Module struct {
	handler      *handler.Handler
	sweeper      *service.Sweeper
	claimLimiter *httpkit.KeyedRateLimiter
}

// Deps groups the collaborators owned by other modules or by main.
// Lease and Metrics may be nil.
type Deps struct {
	Locations service.LocationProvider
	Lease     service.SweepLease
	EventBus  events.Bus
	Metrics   *metrics.Metrics
}

// NewModule creates and initializes the pool module with all its dependencies.
func NewModule(pool *pgxpool.Pool, deps Deps, val *validator.Validator, cfg config.PoolConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)

	configSvc := service.NewConfigService(repo, log)
	claimSvc := service.NewClaimService(repo, deps.Locations, deps.EventBus, deps.Metrics, log)
	sweeper := service.NewSweeper(repo, deps.Lease, deps.EventBus, deps.Metrics, log)
	lister := service.NewListService(repo)

	return &Module{
		handler:      handler.New(configSvc, claimSvc, sweeper, lister, val),
		sweeper:      sweeper,
		claimLimiter: httpkit.NewUserRateLimiter(cfg.GetClaimRatePerMinute(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pool"
}

// Sweeper exposes the escalation sweep for the scheduler and the CLI.
func (m *Module) Sweeper() *service.Sweeper {
	return m.sweeper
}

// RegisterRoutes mounts pool routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	agents := ctx.Protected.Group("/pool")
	agents.GET("/leads", m.handler.ListAssignable)
	agents.POST("/leads/:id/claim", m.claimLimiter.RateLimit(), m.handler.Claim)
	agents.GET("/me/pools", m.handler.MyPools)

	admin := ctx.Admin.Group("/pool")
	admin.GET("/config", m.handler.GetConfiguration)
	admin.PUT("/config", m.handler.UpdateConfiguration)
	admin.PUT("/permissions/:pool", m.handler.ReplacePermissions)

	ctx.Internal.POST("/pool/sweep", m.handler.Sweep)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
