package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/repository"
	"crm_backend/platform/geo"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	officePoint = geo.Point{Latitude: -23.5505, Longitude: -46.6333}
	// fiftyMetersNorth is ~50 m of latitude.
	fiftyMetersNorth = 50.0 / 111195.0
	claimTime        = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
)

func newTestClaimService(store *fakeStore, locations *fakeLocations, m *metrics.Metrics) *ClaimService {
	return NewClaimService(store, locations, nil, m, logger.Nop()).WithClock(func() time.Time { return claimTime })
}

func officeLocations() *fakeLocations {
	return &fakeLocations{locations: []domain.Location{{
		ID: uuid.New(), Name: "Office", Point: officePoint, RadiusMeters: 100,
	}}}
}

func pointAt(offsetLat float64) *geo.Point {
	return &geo.Point{Latitude: officePoint.Latitude + offsetLat, Longitude: officePoint.Longitude}
}

func TestClaimInRangeThenSecondAgentGetsAlreadyAssigned(t *testing.T) {
	store := newFakeStore()
	first, second := uuid.New(), uuid.New()
	store.grant(domain.PoolPriority, first, second)
	leadID := store.addLead(domain.Pooled{Pool: domain.PoolPriority, EnteredAt: claimTime.Add(-time.Hour)}, claimTime.Add(-2*time.Hour))
	svc := newTestClaimService(store, officeLocations(), nil)

	resp, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: first, Position: pointAt(fiftyMetersNorth)})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusAssigned), resp.Lead.QualificationStatus)
	require.NotNil(t, resp.Lead.AssignedAgentID)
	assert.Equal(t, first, *resp.Lead.AssignedAgentID)
	assert.Nil(t, resp.Lead.EnteredPoolAt)
	require.NotNil(t, resp.MatchedDistanceMeters)
	assert.Equal(t, 50, *resp.MatchedDistanceMeters)

	_, err = svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: second, Position: pointAt(fiftyMetersNorth)})
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned())

	assigned := store.lead(leadID).Qualification.(domain.Assigned)
	assert.Equal(t, first, assigned.AgentID)
}

func TestClaimDirectPathSkipsGeofence(t *testing.T) {
	store := newFakeStore()
	agent := uuid.New()
	leadID := store.addLead(domain.Waiting{QualifiedFor: &agent}, claimTime)
	locations := &fakeLocations{}
	svc := newTestClaimService(store, locations, nil)

	resp, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ClaimPathDirect), resp.Path)
	assert.Equal(t, 0, locations.calls)
	assert.Equal(t, domain.StatusAssigned, store.lead(leadID).Status())
}

func TestClaimWaitingLeadRoutedElsewhereIsNotClaimable(t *testing.T) {
	store := newFakeStore()
	owner, other := uuid.New(), uuid.New()
	store.grant(domain.PoolPriority, other)
	leadID := store.addLead(domain.Waiting{QualifiedFor: &owner}, claimTime)
	svc := newTestClaimService(store, officeLocations(), nil)

	_, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: other, Position: pointAt(0)})
	assert.ErrorIs(t, err, domain.ErrNotClaimable(domain.StatusWaiting))
	assert.Equal(t, domain.StatusWaiting, store.lead(leadID).Status())
}

func TestClaimGeofenceEnforcement(t *testing.T) {
	store := newFakeStore()
	agent := uuid.New()
	store.grant(domain.PoolGeneral, agent)
	leadID := store.addLead(domain.Pooled{Pool: domain.PoolGeneral, EnteredAt: claimTime.Add(-time.Hour)}, claimTime.Add(-3*time.Hour))
	m := metrics.New()
	svc := newTestClaimService(store, officeLocations(), m)

	_, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent, Position: pointAt(0.01)})
	require.ErrorIs(t, err, domain.ErrOutOfRange(domain.OutOfRangeDetails{}))
	assert.Equal(t, domain.StatusInGeneralPool, store.lead(leadID).Status())

	_, err = svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent, Position: pointAt(fiftyMetersNorth)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, store.lead(leadID).Status())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Claims().WithLabelValues("pool", "out_of_range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Claims().WithLabelValues("pool", "success")))
}

func TestClaimPoolFailures(t *testing.T) {
	agent := uuid.New()
	pooled := domain.Pooled{Pool: domain.PoolPriority, EnteredAt: claimTime.Add(-time.Minute)}

	tests := []struct {
		name      string
		permitted []domain.PoolName
		locations *fakeLocations
		position  *geo.Point
		wantErr   error
	}{
		{"no permission", []domain.PoolName{domain.PoolGeneral}, officeLocations(), pointAt(0), domain.ErrPoolPermissionDenied(domain.PoolPriority)},
		{"no active locations", []domain.PoolName{domain.PoolPriority}, &fakeLocations{}, pointAt(0), domain.ErrNoActiveLocations()},
		{"missing coordinates", []domain.PoolName{domain.PoolPriority}, officeLocations(), nil, domain.ErrValidation("", nil)},
		{"invalid coordinates", []domain.PoolName{domain.PoolPriority}, officeLocations(), &geo.Point{Latitude: 91}, domain.ErrValidation("", nil)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			for _, p := range tc.permitted {
				store.grant(p, agent)
			}
			leadID := store.addLead(pooled, claimTime.Add(-time.Hour))
			svc := newTestClaimService(store, tc.locations, nil)

			_, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent, Position: tc.position})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, domain.StatusInPriorityPool, store.lead(leadID).Status(), "failed claim must not change state")
		})
	}
}

func TestClaimUnknownLead(t *testing.T) {
	svc := newTestClaimService(newFakeStore(), officeLocations(), nil)
	_, err := svc.Claim(context.Background(), ClaimRequest{LeadID: uuid.New(), AgentID: uuid.New(), Position: pointAt(0)})
	assert.ErrorIs(t, err, domain.ErrLeadNotFound())
}

func TestConcurrentClaimsExactlyOneSucceeds(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(domain.Pooled{Pool: domain.PoolPriority, EnteredAt: claimTime.Add(-time.Minute)}, claimTime.Add(-time.Hour))
	svc := newTestClaimService(store, officeLocations(), nil)

	const agents = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < agents; i++ {
		agent := uuid.New()
		store.grant(domain.PoolPriority, agent)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent, Position: pointAt(fiftyMetersNorth)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrAlreadyAssigned()):
				conflicts++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, agents-1, conflicts)
	assert.Len(t, store.activity, 1)
}

func TestClaimReevaluatesWhenLeadMovesPools(t *testing.T) {
	store := newFakeStore()
	agent := uuid.New()
	store.grant(domain.PoolPriority, agent)
	store.grant(domain.PoolGeneral, agent)
	leadID := store.addLead(domain.Pooled{Pool: domain.PoolPriority, EnteredAt: claimTime.Add(-2 * time.Hour)}, claimTime.Add(-3*time.Hour))

	moved := false
	store.beforeClaim = func(s *fakeStore, params repository.ClaimParams) {
		if moved {
			return
		}
		moved = true
		lead := s.leads[params.LeadID]
		lead.Qualification = domain.Pooled{Pool: domain.PoolGeneral, EnteredAt: claimTime}
		s.leads[params.LeadID] = lead
	}
	svc := newTestClaimService(store, officeLocations(), nil)

	resp, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent, Position: pointAt(0)})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusAssigned), resp.Lead.QualificationStatus)
}

func TestClaimGivesUpAfterRepeatedContention(t *testing.T) {
	store := newFakeStore()
	agent := uuid.New()
	store.grant(domain.PoolPriority, agent)
	store.grant(domain.PoolGeneral, agent)
	leadID := store.addLead(domain.Pooled{Pool: domain.PoolPriority, EnteredAt: claimTime}, claimTime.Add(-time.Hour))

	// flip the pool before every conditional write
	store.beforeClaim = func(s *fakeStore, params repository.ClaimParams) {
		lead := s.leads[params.LeadID]
		next := domain.PoolGeneral
		if lead.Status() == domain.StatusInGeneralPool {
			next = domain.PoolPriority
		}
		lead.Qualification = domain.Pooled{Pool: next, EnteredAt: claimTime}
		s.leads[params.LeadID] = lead
	}
	svc := newTestClaimService(store, officeLocations(), nil)

	_, err := svc.Claim(context.Background(), ClaimRequest{LeadID: leadID, AgentID: agent, Position: pointAt(0)})
	assert.ErrorIs(t, err, domain.ErrClaimContention())
}

func TestDirectClaimContentionIsRecordedOnDirectPath(t *testing.T) {
	store := newFakeStore()
	agent := uuid.New()
	leadID := store.addLead(domain.Waiting{QualifiedFor: &agent}, claimTime)
	store.loseClaims = true

	var logs bytes.Buffer
	m := metrics.New()
	svc := NewClaimService(store, &fakeLocations{}, nil, m, logger.NewWithWriter("production", &logs)).
		WithClock(func() time.Time { return claimTime })
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")

	_, err := svc.Claim(ctx, ClaimRequest{LeadID: leadID, AgentID: agent})
	require.ErrorIs(t, err, domain.ErrClaimContention())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Claims().WithLabelValues("direct", "claim_contention")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Claims().WithLabelValues("pool", "claim_contention")))
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
	assert.Contains(t, logs.String(), `"outcome":"claim_contention"`)
}

func TestFailedClaimLogCarriesRequestID(t *testing.T) {
	store := newFakeStore()
	leadID := store.addLead(domain.Waiting{}, claimTime)

	var logs bytes.Buffer
	svc := NewClaimService(store, &fakeLocations{}, nil, nil, logger.NewWithWriter("production", &logs))
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-7")

	_, err := svc.Claim(ctx, ClaimRequest{LeadID: leadID, AgentID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, logs.String(), `"request_id":"req-7"`)
	assert.Contains(t, logs.String(), `"outcome":"not_claimable"`)
}
