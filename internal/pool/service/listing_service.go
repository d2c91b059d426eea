package service

import (
	"context"
	"slices"

	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/transport"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// listLimit caps each group of the assignable listing.
const listLimit = 200

// ListStore is the part of the repository the listing needs.
type ListStore interface {
	PermittedPools(ctx context.Context, userID uuid.UUID) ([]domain.PoolName, error)
	ListRoutedTo(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.Lead, error)
	ListInPool(ctx context.Context, pool domain.PoolName, limit int) ([]domain.Lead, error)
}

// ListService builds the three groups of leads an agent may claim.
type ListService struct {
	store ListStore
}

// NewListService creates a listing service.
func NewListService(store ListStore) *ListService {
	return &ListService{store: store}
}

// ListAssignable returns forMe, and each pool group only when agentID holds
// that pool's permission. The groups are loaded concurrently.
func (s *ListService) ListAssignable(ctx context.Context, agentID uuid.UUID) (transport.AssignableLeadsResponse, error) {
	permitted, err := s.store.PermittedPools(ctx, agentID)
	if err != nil {
		return transport.AssignableLeadsResponse{}, err
	}

	var forMe, priority, general []domain.Lead
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forMe, err = s.store.ListRoutedTo(gctx, agentID, listLimit)
		return err
	})
	if slices.Contains(permitted, domain.PoolPriority) {
		g.Go(func() error {
			var err error
			priority, err = s.store.ListInPool(gctx, domain.PoolPriority, listLimit)
			return err
		})
	}
	if slices.Contains(permitted, domain.PoolGeneral) {
		g.Go(func() error {
			var err error
			general, err = s.store.ListInPool(gctx, domain.PoolGeneral, listLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return transport.AssignableLeadsResponse{}, err
	}

	return transport.AssignableLeadsResponse{
		ForMe:        toLeadResponses(forMe),
		PriorityPool: toLeadResponses(priority),
		GeneralPool:  toLeadResponses(general),
	}, nil
}
