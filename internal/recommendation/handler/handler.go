package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/recommendation/service"
	"salesdesk_backend/platform/httpkit"
)

// Handler handles HTTP requests for vendor recommendations.
type Handler struct {
	svc *service.Service
}

const (
	msgInvalidLeadID = "invalid lead ID"
	msgInvalidLimit  = "invalid limit"
)

// New creates a new recommendation handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Recommend returns the ranked vendor suggestions for a lead.
// GET /api/v1/leads/:id/recommendations?limit=
func (h *Handler) Recommend(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	limit := service.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidLimit, nil)
			return
		}
	}

	result, err := h.svc.RecommendVendors(c.Request.Context(), leadID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
