package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	geofencetransport "crm_backend/internal/geofence/transport"
	poolservice "crm_backend/internal/pool/service"
	pooltransport "crm_backend/internal/pool/transport"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	cfg     pooltransport.ConfigurationResponse
	updates []pooltransport.UpdateConfigurationRequest
}

func (f *fakeConfig) Get(context.Context) (pooltransport.ConfigurationResponse, error) {
	return f.cfg, nil
}

func (f *fakeConfig) Update(_ context.Context, _ uuid.UUID, req pooltransport.UpdateConfigurationRequest) (pooltransport.ConfigurationResponse, error) {
	f.updates = append(f.updates, req)
	f.cfg.RadiusMeters = *req.RadiusMeters
	f.cfg.MinutesToPriorityPool = *req.MinutesToPriorityPool
	f.cfg.MinutesToGeneralPool = *req.MinutesToGeneralPool
	return f.cfg, nil
}

type fakeSweeper struct {
	result  poolservice.SweepResult
	trigger string
}

func (f *fakeSweeper) Sweep(_ context.Context, trigger string) (poolservice.SweepResult, error) {
	f.trigger = trigger
	return f.result, nil
}

type fakeLocations struct{ list geofencetransport.LocationListResponse }

func (f fakeLocations) List(context.Context, bool) (geofencetransport.LocationListResponse, error) {
	return f.list, nil
}

func run(t *testing.T, svc *Services, args ...string) (string, error) {
	t.Helper()
	closed := false
	root := NewRootCmd("test", func(context.Context) (*Services, func(), error) {
		return svc, func() { closed = true }, nil
	})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "cleanup must run")
	}
	return buf.String(), err
}

func TestRootHasSubcommands(t *testing.T) {
	root := NewRootCmd("1.2.3", nil)
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sweep", "config", "locations"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
	assert.Equal(t, "1.2.3", root.Version)
}

func TestSweepRunsInline(t *testing.T) {
	sweeper := &fakeSweeper{result: poolservice.SweepResult{ToPriority: 3, ToGeneral: 1, Duration: time.Millisecond}}

	out, err := run(t, &Services{Sweeper: sweeper}, "sweep")

	require.NoError(t, err)
	assert.Equal(t, poolservice.TriggerCLI, sweeper.trigger)
	assert.Contains(t, out, "escalated 3 to priority, 1 to general")
}

func TestSweepEnqueueNeedsRedis(t *testing.T) {
	_, err := run(t, &Services{Sweeper: &fakeSweeper{}}, "sweep", "--enqueue")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestConfigSetKeepsOmittedValues(t *testing.T) {
	store := &fakeConfig{cfg: pooltransport.ConfigurationResponse{RadiusMeters: 100, MinutesToPriorityPool: 30, MinutesToGeneralPool: 60}}

	out, err := run(t, &Services{Config: store}, "config", "set", "--general-minutes", "0")

	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	assert.Equal(t, 100, *store.updates[0].RadiusMeters)
	assert.Equal(t, 30, *store.updates[0].MinutesToPriorityPool)
	assert.Equal(t, 0, *store.updates[0].MinutesToGeneralPool)
	assert.Contains(t, out, "minutes_to_general_pool:  0")
}

func TestLocationsTable(t *testing.T) {
	id := uuid.New()
	svc := &Services{Locations: fakeLocations{list: geofencetransport.LocationListResponse{
		Items: []geofencetransport.LocationResponse{{ID: id, Name: "Stand", Latitude: -23.5, Longitude: -46.6, ActiveRadiusMeters: 150, IsActive: true}},
		Total: 1,
	}}}

	out, err := run(t, svc, "locations", "--active")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], id.String())
	assert.Contains(t, lines[1], "150")
}

func TestOpenerFailureIsReturned(t *testing.T) {
	root := NewRootCmd("", func(context.Context) (*Services, func(), error) {
		return nil, nil, errors.New("no database")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "show"})

	assert.EqualError(t, root.ExecuteContext(context.Background()), "no database")
}

func TestHelpDoesNotOpenBackends(t *testing.T) {
	opened := false
	root := NewRootCmd("", func(context.Context) (*Services, func(), error) {
		opened = true
		return &Services{}, func() {}, nil
	})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"help", "sweep"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.False(t, opened)
}
