package maps

import (
	"context"
	"net/http"

	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// AddressSearcher is the lookup the handler delegates to.
type AddressSearcher interface {
	SearchAddress(ctx context.Context, query string) ([]AddressSuggestion, error)
}

// Handler exposes the address lookup endpoint.
type Handler struct {
	svc AddressSearcher
	val *validator.Validator
}

func NewHandler(svc AddressSearcher, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// LookupAddress handles GET /api/v1/admin/maps/address-lookup?q=...
func (h *Handler) LookupAddress(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid query"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("query 'q' must be 3 to 200 characters").WithDetails(validator.FieldErrors(err)))
		return
	}

	results, err := h.svc.SearchAddress(c.Request.Context(), req.Query)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address lookup service unavailable", nil)
		return
	}

	httpkit.OK(c, results)
}
