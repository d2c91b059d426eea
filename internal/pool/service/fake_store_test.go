package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/repository"

	"github.com/google/uuid"
)

// fakeStore mirrors the SQL semantics of the Postgres repository: claims
// and sweeps are conditional writes evaluated under one lock.
type fakeStore struct {
	mu          sync.Mutex
	cfg         *domain.Configuration
	leads       map[uuid.UUID]domain.Lead
	permissions map[domain.PoolName][]uuid.UUID
	activity    []string

	escalateCalls int
	// loseClaims makes every conditional claim write match no row.
	loseClaims bool
	// unknownUsers fail permission writes like a foreign key violation.
	unknownUsers map[uuid.UUID]bool
	// beforeClaim runs under the lock before the conditional check.
	beforeClaim func(s *fakeStore, params repository.ClaimParams)
}

var _ repository.Repository = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:       map[uuid.UUID]domain.Lead{},
		permissions: map[domain.PoolName][]uuid.UUID{},
	}
}

func (s *fakeStore) withConfig(cfg domain.Configuration) *fakeStore {
	s.cfg = &cfg
	return s
}

func (s *fakeStore) addLead(q domain.Qualification, createdAt time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.leads[id] = domain.Lead{ID: id, ConsumerName: "Maria", CreatedAt: createdAt, UpdatedAt: createdAt, Qualification: q}
	return id
}

func (s *fakeStore) grant(pool domain.PoolName, users ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[pool] = append(s.permissions[pool], users...)
}

func (s *fakeStore) lead(id uuid.UUID) domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id]
}

func (s *fakeStore) GetOrCreateConfiguration(context.Context) (domain.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		s.cfg = &domain.Configuration{UpdatedAt: time.Now().UTC()}
	}
	return *s.cfg, nil
}

func (s *fakeStore) GetConfiguration(context.Context) (domain.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return domain.Configuration{}, domain.ErrConfigurationMissing()
	}
	return *s.cfg, nil
}

func (s *fakeStore) UpdateConfiguration(_ context.Context, cfg domain.Configuration, grants map[domain.PoolName][]uuid.UUID) (domain.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, users := range grants {
		if err := s.checkUsers(users); err != nil {
			return domain.Configuration{}, err
		}
	}
	cfg.UpdatedAt = time.Now().UTC()
	s.cfg = &cfg
	for pool, users := range grants {
		s.permissions[pool] = slices.Clone(users)
	}
	return cfg, nil
}

func (s *fakeStore) ReplacePermissions(_ context.Context, pool domain.PoolName, userIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUsers(userIDs); err != nil {
		return err
	}
	s.permissions[pool] = slices.Clone(userIDs)
	return nil
}

func (s *fakeStore) checkUsers(userIDs []uuid.UUID) error {
	for _, id := range userIDs {
		if s.unknownUsers[id] {
			return domain.ErrValidation("permission list references an unknown user", map[string]string{"userIds": "exists"})
		}
	}
	return nil
}

func (s *fakeStore) ListPermissions(context.Context) (map[domain.PoolName][]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[domain.PoolName][]uuid.UUID{}
	for pool, users := range s.permissions {
		out[pool] = slices.Clone(users)
	}
	return out, nil
}

func (s *fakeStore) PermittedPools(_ context.Context, userID uuid.UUID) ([]domain.PoolName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pools []domain.PoolName
	for _, pool := range domain.AllPools {
		if slices.Contains(s.permissions[pool], userID) {
			pools = append(pools, pool)
		}
	}
	return pools, nil
}

func (s *fakeStore) GetLead(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, domain.ErrLeadNotFound()
	}
	return lead, nil
}

func (s *fakeStore) ListRoutedTo(_ context.Context, agentID uuid.UUID, limit int) ([]domain.Lead, error) {
	return s.filter(limit, func(l domain.Lead) bool {
		w, ok := l.Qualification.(domain.Waiting)
		return ok && w.RoutedTo(agentID)
	}), nil
}

func (s *fakeStore) ListInPool(_ context.Context, pool domain.PoolName, limit int) ([]domain.Lead, error) {
	return s.filter(limit, func(l domain.Lead) bool {
		p, ok := l.Qualification.(domain.Pooled)
		return ok && p.Pool == pool
	}), nil
}

func (s *fakeStore) filter(limit int, keep func(domain.Lead) bool) []domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Lead
	for _, l := range s.leads {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *fakeStore) ClaimLead(_ context.Context, params repository.ClaimParams) (domain.Lead, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeClaim != nil {
		s.beforeClaim(s, params)
	}

	lead, ok := s.leads[params.LeadID]
	if !ok || s.loseClaims || lead.Status() != params.ExpectedStatus {
		return domain.Lead{}, false, nil
	}
	if w, isWaiting := lead.Qualification.(domain.Waiting); isWaiting && !w.RoutedTo(params.AgentID) {
		return domain.Lead{}, false, nil
	}

	lead.Qualification = domain.Assign(params.AgentID, params.At)
	lead.UpdatedAt = params.At
	s.leads[lead.ID] = lead
	s.activity = append(s.activity, repository.ActionClaimed)
	return lead, true, nil
}

func (s *fakeStore) EscalateLeads(_ context.Context, params repository.EscalateParams) (repository.EscalateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escalateCalls++
	if params.Now.IsZero() {
		return repository.EscalateResult{}, errors.New("escalate called without a sweep time")
	}

	// rebuild the thresholds from the cutoffs the sweeper computed
	cfg := domain.Configuration{
		MinutesToPriorityPool: int(params.Now.Sub(params.PriorityCutoff) / time.Minute),
		MinutesToGeneralPool:  int(params.Now.Sub(params.GeneralCutoff) / time.Minute),
	}

	var res repository.EscalateResult
	for id, lead := range s.leads {
		updated, moves := domain.Escalate(lead, cfg, params.Now)
		for _, m := range moves {
			if m.To == domain.StatusInPriorityPool {
				res.ToPriority = append(res.ToPriority, id)
			} else {
				res.ToGeneral = append(res.ToGeneral, id)
			}
			s.activity = append(s.activity, string(m.To))
		}
		s.leads[id] = updated
	}
	return res, nil
}

type fakeLocations struct {
	locations []domain.Location
	calls     int
	mu        sync.Mutex
}

func (f *fakeLocations) ActiveLocations(context.Context) ([]domain.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return slices.Clone(f.locations), nil
}

type fakeLease struct {
	held     bool
	released int
}

func (l *fakeLease) Acquire(context.Context) (func(context.Context), bool, error) {
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) {
		l.held = false
		l.released++
	}, true, nil
}
