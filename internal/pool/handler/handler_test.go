package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/service"
	"crm_backend/internal/pool/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClaimer struct {
	got service.ClaimRequest
	err error
}

func (s *stubClaimer) Claim(_ context.Context, req service.ClaimRequest) (transport.ClaimLeadResponse, error) {
	s.got = req
	if s.err != nil {
		return transport.ClaimLeadResponse{}, s.err
	}
	return transport.ClaimLeadResponse{Path: "pool", Lead: transport.LeadResponse{ID: req.LeadID, QualificationStatus: "assigned"}}, nil
}

type stubSweeper struct {
	result service.SweepResult
	err    error
}

func (s stubSweeper) Sweep(context.Context, string) (service.SweepResult, error) {
	return s.result, s.err
}

type stubConfig struct {
	replaced map[domain.PoolName][]uuid.UUID
	updated  *transport.UpdateConfigurationRequest
}

func (s *stubConfig) Get(context.Context) (transport.ConfigurationResponse, error) {
	return transport.ConfigurationResponse{}, nil
}

func (s *stubConfig) Update(_ context.Context, _ uuid.UUID, req transport.UpdateConfigurationRequest) (transport.ConfigurationResponse, error) {
	s.updated = &req
	return transport.ConfigurationResponse{RadiusMeters: *req.RadiusMeters}, nil
}

func (s *stubConfig) ReplacePermissions(_ context.Context, pool domain.PoolName, ids []uuid.UUID) error {
	if s.replaced == nil {
		s.replaced = map[domain.PoolName][]uuid.UUID{}
	}
	s.replaced[pool] = ids
	return nil
}

func (s *stubConfig) PermittedPools(context.Context, uuid.UUID) (transport.PermittedPoolsResponse, error) {
	return transport.PermittedPoolsResponse{Pools: []string{"priority"}}, nil
}

type stubLister struct{}

func (stubLister) ListAssignable(context.Context, uuid.UUID) (transport.AssignableLeadsResponse, error) {
	return transport.AssignableLeadsResponse{}, nil
}

func newTestRouter(h *Handler, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(httpkit.ContextUserIDKey, *userID)
			c.Set(httpkit.ContextRolesKey, []string{httpkit.RoleAdmin})
		}
		c.Next()
	})
	r.GET("/pool/leads", h.ListAssignable)
	r.POST("/pool/leads/:id/claim", h.Claim)
	r.PUT("/admin/pool/config", h.UpdateConfiguration)
	r.PUT("/admin/pool/permissions/:pool", h.ReplacePermissions)
	r.POST("/internal/pool/sweep", h.Sweep)
	return r
}

func doJSON(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, httpkit.ErrorResponse) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var errBody httpkit.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &errBody)
	return rec, errBody
}

func TestClaimMapsDomainErrors(t *testing.T) {
	agent := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already assigned", domain.ErrAlreadyAssigned(), http.StatusConflict, domain.CodeAlreadyAssigned},
		{"out of range", domain.ErrOutOfRange(domain.OutOfRangeDetails{DistanceMeters: 900, RadiusMeters: 100}), http.StatusUnprocessableEntity, domain.CodeOutOfRange},
		{"no locations", domain.ErrNoActiveLocations(), http.StatusUnprocessableEntity, domain.CodeNoActiveLocations},
		{"no permission", domain.ErrPoolPermissionDenied(domain.PoolGeneral), http.StatusForbidden, domain.CodePoolPermissionDenied},
		{"not found", domain.ErrLeadNotFound(), http.StatusNotFound, domain.CodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := New(&stubConfig{}, &stubClaimer{err: tc.err}, stubSweeper{}, stubLister{}, validator.New())
			rec, body := doJSON(newTestRouter(h, &agent), http.MethodPost, "/pool/leads/"+uuid.NewString()+"/claim",
				map[string]float64{"latitude": -23.55, "longitude": -46.63})

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}
}

func TestClaimPassesPositionAndCaller(t *testing.T) {
	agent := uuid.New()
	leadID := uuid.New()
	claimer := &stubClaimer{}
	h := New(&stubConfig{}, claimer, stubSweeper{}, stubLister{}, validator.New())

	rec, _ := doJSON(newTestRouter(h, &agent), http.MethodPost, "/pool/leads/"+leadID.String()+"/claim",
		map[string]float64{"latitude": -23.55, "longitude": -46.63})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, leadID, claimer.got.LeadID)
	assert.Equal(t, agent, claimer.got.AgentID)
	require.NotNil(t, claimer.got.Position)
	assert.InDelta(t, -23.55, claimer.got.Position.Latitude, 1e-9)
}

func TestClaimWithoutBodyIsAllowedForDirectLeads(t *testing.T) {
	agent := uuid.New()
	claimer := &stubClaimer{}
	h := New(&stubConfig{}, claimer, stubSweeper{}, stubLister{}, validator.New())

	rec, _ := doJSON(newTestRouter(h, &agent), http.MethodPost, "/pool/leads/"+uuid.NewString()+"/claim", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, claimer.got.Position)
}

func TestClaimAcceptsChunkedBodies(t *testing.T) {
	agent := uuid.New()
	claimer := &stubClaimer{}
	r := newTestRouter(New(&stubConfig{}, claimer, stubSweeper{}, stubLister{}, validator.New()), &agent)

	chunked := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/pool/leads/"+uuid.NewString()+"/claim", nil)
		req.Body = io.NopCloser(strings.NewReader(body))
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := chunked("")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, claimer.got.Position)

	rec = chunked(`{"latitude": -23.55, "longitude": -46.63}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, claimer.got.Position)
	assert.Equal(t, -23.55, claimer.got.Position.Latitude)

	rec = chunked(`{"latitude":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimRejectsBadInput(t *testing.T) {
	agent := uuid.New()
	h := New(&stubConfig{}, &stubClaimer{}, stubSweeper{}, stubLister{}, validator.New())
	r := newTestRouter(h, &agent)

	rec, body := doJSON(r, http.MethodPost, "/pool/leads/not-a-uuid/claim", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeValidation, body.Code)

	rec, body = doJSON(r, http.MethodPost, "/pool/leads/"+uuid.NewString()+"/claim", map[string]float64{"latitude": 123, "longitude": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeValidation, body.Code)
	assert.Equal(t, map[string]any{"latitude": "latitude"}, body.Details)

	rec, body = doJSON(r, http.MethodPost, "/pool/leads/"+uuid.NewString()+"/claim", map[string]float64{"latitude": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeValidation, body.Code)
}

func TestClaimRequiresIdentity(t *testing.T) {
	h := New(&stubConfig{}, &stubClaimer{}, stubSweeper{}, stubLister{}, validator.New())
	rec, body := doJSON(newTestRouter(h, nil), http.MethodPost, "/pool/leads/"+uuid.NewString()+"/claim", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

func TestUpdateConfigurationValidation(t *testing.T) {
	admin := uuid.New()
	cfg := &stubConfig{}
	h := New(cfg, &stubClaimer{}, stubSweeper{}, stubLister{}, validator.New())
	r := newTestRouter(h, &admin)

	rec, body := doJSON(r, http.MethodPut, "/admin/pool/config", map[string]int{
		"radiusMeters": -5, "minutesToPriorityPool": 30, "minutesToGeneralPool": 60,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeValidation, body.Code)
	assert.Equal(t, map[string]any{"radiusMeters": "min=0"}, body.Details)
	assert.Nil(t, cfg.updated)

	rec, body = doJSON(r, http.MethodPut, "/admin/pool/config", map[string]int{"radiusMeters": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeValidation, body.Code)

	rec, _ = doJSON(r, http.MethodPut, "/admin/pool/config", map[string]int{
		"radiusMeters": 0, "minutesToPriorityPool": 0, "minutesToGeneralPool": 0,
	})
	assert.Equal(t, http.StatusOK, rec.Code, "zero thresholds are valid")
	require.NotNil(t, cfg.updated)
}

func TestReplacePermissionsRoutes(t *testing.T) {
	admin := uuid.New()
	cfg := &stubConfig{}
	h := New(cfg, &stubClaimer{}, stubSweeper{}, stubLister{}, validator.New())
	r := newTestRouter(h, &admin)
	user := uuid.New()

	rec, _ := doJSON(r, http.MethodPut, "/admin/pool/permissions/priority", map[string][]uuid.UUID{"userIds": {user}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{user}, cfg.replaced[domain.PoolPriority])

	rec, body := doJSON(r, http.MethodPut, "/admin/pool/permissions/vip", map[string][]uuid.UUID{"userIds": {user}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeValidation, body.Code)
}

func TestSweepEndpoint(t *testing.T) {
	h := New(&stubConfig{}, &stubClaimer{}, stubSweeper{result: service.SweepResult{ToPriority: 2, ToGeneral: 1}}, stubLister{}, validator.New())
	rec, _ := doJSON(newTestRouter(h, nil), http.MethodPost, "/internal/pool/sweep", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp transport.SweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, transport.SweepResponse{Status: "ok", ToPriority: 2, ToGeneral: 1}, resp)

	h = New(&stubConfig{}, &stubClaimer{}, stubSweeper{err: domain.ErrConfigurationMissing()}, stubLister{}, validator.New())
	rec, body := doJSON(newTestRouter(h, nil), http.MethodPost, "/internal/pool/sweep", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.CodeConfigurationMissing, body.Code)
}
