package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/distribution/service"
	"salesdesk_backend/internal/distribution/transport"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"
)

// Handler handles HTTP requests for lead distribution.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidLeadID  = "invalid lead ID"
)

// New creates a new distribution handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Distribute routes a single lead to the next vendor.
// POST /api/v1/distribution/leads/:id/distribute
func (h *Handler) Distribute(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	var req transport.DistributeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	result, err := h.svc.DistributeLead(c.Request.Context(), leadID, req.QualifierID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Enqueue registers a lead in the distribution queue.
// POST /api/v1/distribution/leads/:id/enqueue
func (h *Handler) Enqueue(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	result, err := h.svc.Enqueue(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Run batch-distributes every currently unowned lead.
// POST /api/v1/distribution/run
func (h *Handler) Run(c *gin.Context) {
	result, err := h.svc.DistributeAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Preview shows who would receive the next lead, without mutating anything.
// GET /api/v1/distribution/preview
func (h *Handler) Preview(c *gin.Context) {
	preview, err := h.svc.PreviewNext(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	if preview == nil {
		httpkit.OK(c, gin.H{"next": nil})
		return
	}
	httpkit.OK(c, gin.H{"next": preview})
}

// QueueEntry exposes the ledger entry for a lead.
// GET /api/v1/distribution/queue/:leadId
func (h *Handler) QueueEntry(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	result, err := h.svc.QueueEntry(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
