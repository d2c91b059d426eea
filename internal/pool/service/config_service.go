package service

import (
	"context"
	"slices"

	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/repository"
	"crm_backend/internal/pool/transport"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// ConfigService owns the pool configuration singleton and pool permissions.
type ConfigService struct {
	repo repository.Repository
	log  *logger.Logger
}

// NewConfigService creates a configuration service.
func NewConfigService(repo repository.Repository, log *logger.Logger) *ConfigService {
	return &ConfigService{repo: repo, log: log}
}

// Get returns the configuration with the permissions of both pools,
// creating the singleton on first access.
func (s *ConfigService) Get(ctx context.Context) (transport.ConfigurationResponse, error) {
	cfg, err := s.repo.GetOrCreateConfiguration(ctx)
	if err != nil {
		return transport.ConfigurationResponse{}, err
	}
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return transport.ConfigurationResponse{}, err
	}
	return toConfigurationResponse(cfg, perms), nil
}

// Configuration returns the domain value, creating it when absent.
func (s *ConfigService) Configuration(ctx context.Context) (domain.Configuration, error) {
	return s.repo.GetOrCreateConfiguration(ctx)
}

// Update stores new thresholds. Permission lists present in the request
// replace the corresponding pool's grants wholesale. Thresholds and grants
// are written together or not at all.
func (s *ConfigService) Update(ctx context.Context, actorID uuid.UUID, req transport.UpdateConfigurationRequest) (transport.ConfigurationResponse, error) {
	if req.RadiusMeters == nil || req.MinutesToPriorityPool == nil || req.MinutesToGeneralPool == nil {
		return transport.ConfigurationResponse{}, domain.ErrValidation("all thresholds are required", nil)
	}

	cfg := domain.Configuration{
		RadiusMeters:          *req.RadiusMeters,
		MinutesToPriorityPool: *req.MinutesToPriorityPool,
		MinutesToGeneralPool:  *req.MinutesToGeneralPool,
	}
	if actorID != uuid.Nil {
		cfg.UpdatedBy = &actorID
	}
	if err := cfg.Validate(); err != nil {
		return transport.ConfigurationResponse{}, err
	}
	// reject bad user lists before anything is written
	if slices.Contains(req.PriorityUserIDs, uuid.Nil) || slices.Contains(req.GeneralUserIDs, uuid.Nil) {
		return transport.ConfigurationResponse{}, domain.ErrValidation("user ids must be valid", map[string]string{"userIds": "uuid"})
	}

	grants := map[domain.PoolName][]uuid.UUID{}
	if req.PriorityUserIDs != nil {
		grants[domain.PoolPriority] = dedupe(req.PriorityUserIDs)
	}
	if req.GeneralUserIDs != nil {
		grants[domain.PoolGeneral] = dedupe(req.GeneralUserIDs)
	}

	saved, err := s.repo.UpdateConfiguration(ctx, cfg, grants)
	if err != nil {
		return transport.ConfigurationResponse{}, err
	}

	s.log.Info("pool configuration updated",
		"actorId", actorID,
		"radiusMeters", saved.RadiusMeters,
		"minutesToPriorityPool", saved.MinutesToPriorityPool,
		"minutesToGeneralPool", saved.MinutesToGeneralPool,
		"replacedPools", len(grants),
	)

	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return transport.ConfigurationResponse{}, err
	}
	return toConfigurationResponse(saved, perms), nil
}

// ReplacePermissions sets the complete user list of pool. This is not a
// merge: users missing from userIDs lose access.
func (s *ConfigService) ReplacePermissions(ctx context.Context, pool domain.PoolName, userIDs []uuid.UUID) error {
	if _, err := domain.ParsePoolName(string(pool)); err != nil {
		return err
	}
	if slices.Contains(userIDs, uuid.Nil) {
		return domain.ErrValidation("user ids must be valid", map[string]string{"userIds": "uuid"})
	}

	unique := dedupe(userIDs)
	if err := s.repo.ReplacePermissions(ctx, pool, unique); err != nil {
		return err
	}
	s.log.Info("pool permissions replaced", "pool", pool, "users", len(unique))
	return nil
}

// PermittedPools returns the pools userID may claim from.
func (s *ConfigService) PermittedPools(ctx context.Context, userID uuid.UUID) (transport.PermittedPoolsResponse, error) {
	pools, err := s.repo.PermittedPools(ctx, userID)
	if err != nil {
		return transport.PermittedPoolsResponse{}, err
	}
	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, string(p))
	}
	return transport.PermittedPoolsResponse{Pools: names}, nil
}

func toConfigurationResponse(cfg domain.Configuration, perms map[domain.PoolName][]uuid.UUID) transport.ConfigurationResponse {
	priority := perms[domain.PoolPriority]
	if priority == nil {
		priority = []uuid.UUID{}
	}
	general := perms[domain.PoolGeneral]
	if general == nil {
		general = []uuid.UUID{}
	}
	return transport.ConfigurationResponse{
		RadiusMeters:          cfg.RadiusMeters,
		MinutesToPriorityPool: cfg.MinutesToPriorityPool,
		MinutesToGeneralPool:  cfg.MinutesToGeneralPool,
		PriorityUserIDs:       priority,
		GeneralUserIDs:        general,
		UpdatedBy:             cfg.UpdatedBy,
		UpdatedAt:             cfg.UpdatedAt,
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
