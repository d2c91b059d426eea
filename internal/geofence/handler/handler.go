package handler

import (
	"net/http"
	"strconv"

	"crm_backend/internal/geofence/service"
	"crm_backend/internal/geofence/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid location ID"
)

// Handler handles geofence location administration.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new geofence handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns locations; ?active=true limits to active ones.
// GET /api/v1/admin/geofence/locations
func (h *Handler) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))

	result, err := h.svc.List(c.Request.Context(), activeOnly)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one location.
// GET /api/v1/admin/geofence/locations/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create adds a location.
// POST /api/v1/admin/geofence/locations
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Update changes a location.
// PUT /api/v1/admin/geofence/locations/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetActive activates or deactivates a location.
// PATCH /api/v1/admin/geofence/locations/:id/active
func (h *Handler) SetActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SetActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.SetActive(c.Request.Context(), id, *req.IsActive)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a location.
// DELETE /api/v1/admin/geofence/locations/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidID))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return false
	}
	return true
}
