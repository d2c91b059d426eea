package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"crm_backend/internal/pool/domain"
	"crm_backend/internal/pool/service"
	"crm_backend/internal/pool/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/geo"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead ID"
)

// ConfigUseCases is the configuration and permissions surface.
type ConfigUseCases interface {
	Get(ctx context.Context) (transport.ConfigurationResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, req transport.UpdateConfigurationRequest) (transport.ConfigurationResponse, error)
	ReplacePermissions(ctx context.Context, pool domain.PoolName, userIDs []uuid.UUID) error
	PermittedPools(ctx context.Context, userID uuid.UUID) (transport.PermittedPoolsResponse, error)
}

// Claimer claims a lead for an agent.
type Claimer interface {
	Claim(ctx context.Context, req service.ClaimRequest) (transport.ClaimLeadResponse, error)
}

// Sweeper runs the escalation sweep.
type Sweeper interface {
	Sweep(ctx context.Context, trigger string) (service.SweepResult, error)
}

// Lister lists assignable leads.
type Lister interface {
	ListAssignable(ctx context.Context, agentID uuid.UUID) (transport.AssignableLeadsResponse, error)
}

// Handler handles HTTP requests for the qualification pool.
type Handler struct {
	config  ConfigUseCases
	claims  Claimer
	sweeper Sweeper
	lister  Lister
	val     *validator.Validator
}

// New creates a new pool handler.
func New(config ConfigUseCases, claims Claimer, sweeper Sweeper, lister Lister, val *validator.Validator) *Handler {
	return &Handler{config: config, claims: claims, sweeper: sweeper, lister: lister, val: val}
}

// ListAssignable returns the leads the caller may claim.
// GET /api/v1/pool/leads
func (h *Handler) ListAssignable(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.lister.ListAssignable(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Claim assigns a lead to the caller.
// POST /api/v1/pool/leads/:id/claim
func (h *Handler) Claim(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidLeadID).WithDetails(map[string]string{"id": "uuid"}))
		return
	}

	// directly routed leads may be claimed without a body
	var req transport.ClaimLeadRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		httpkit.HandleError(c, domain.ErrValidation("latitude and longitude must be sent together", map[string]string{
			"latitude":  "required_with=longitude",
			"longitude": "required_with=latitude",
		}))
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	claimReq := service.ClaimRequest{LeadID: leadID, AgentID: identity.UserID()}
	if req.Latitude != nil {
		claimReq.Position = &geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	result, err := h.claims.Claim(c.Request.Context(), claimReq)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MyPools returns the pools the caller may claim from.
// GET /api/v1/pool/me/pools
func (h *Handler) MyPools(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.config.PermittedPools(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetConfiguration returns thresholds and permissions (admin only).
// GET /api/v1/admin/pool/config
func (h *Handler) GetConfiguration(c *gin.Context) {
	result, err := h.config.Get(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateConfiguration stores thresholds and optional permission lists (admin only).
// PUT /api/v1/admin/pool/config
func (h *Handler) UpdateConfiguration(c *gin.Context) {
	var req transport.UpdateConfigurationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.config.Update(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ReplacePermissions replaces the full user list of one pool (admin only).
// PUT /api/v1/admin/pool/permissions/:pool
func (h *Handler) ReplacePermissions(c *gin.Context) {
	pool, err := domain.ParsePoolName(c.Param("pool"))
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.ReplacePermissionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if httpkit.HandleError(c, h.config.ReplacePermissions(c.Request.Context(), pool, req.UserIDs)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Sweep runs the escalation sweep for the external scheduler.
// POST /api/v1/internal/pool/sweep
func (h *Handler) Sweep(c *gin.Context) {
	result, err := h.sweeper.Sweep(c.Request.Context(), service.TriggerHTTP)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SweepResponse{
		Status:     "ok",
		Skipped:    result.Skipped,
		ToPriority: result.ToPriority,
		ToGeneral:  result.ToGeneral,
	})
}

// bindOptionalJSON is bindJSON for bodies that may be absent. An empty body,
// chunked or not, leaves req at its zero value.
func (h *Handler) bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, domain.ErrValidation(msgValidationFailed, validator.FieldErrors(err)))
		return false
	}
	return true
}

// bindJSON decodes and validates the body, writing a VALIDATION_ERROR response on failure.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, domain.ErrValidation(msgValidationFailed, validator.FieldErrors(err)))
		return false
	}
	return true
}
