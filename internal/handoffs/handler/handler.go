package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/handoffs/domain"
	"salesdesk_backend/internal/handoffs/service"
	"salesdesk_backend/internal/handoffs/transport"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"
)

// Handler handles HTTP requests for the handoff lifecycle.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid handoff ID"
	msgInvalidVendorID  = "invalid vendor ID"
	msgInvalidQualifier = "invalid qualifier ID"
	msgInvalidStatus    = "invalid status filter"
	msgNotAllowed       = "handoff not found for this vendor or not actionable"
)

// New creates a new handoff handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create registers a new handoff from qualifier to vendor.
// POST /api/v1/handoffs
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Accept records the receiving vendor's acceptance.
// POST /api/v1/handoffs/:id/accept
func (h *Handler) Accept(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.AcceptHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, ok, err := h.svc.Accept(c.Request.Context(), id, req.VendorID)
	if httpkit.HandleError(c, err) {
		return
	}
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgNotAllowed, nil)
		return
	}
	httpkit.OK(c, result)
}

// Reject records the receiving vendor's rejection with a reason.
// POST /api/v1/handoffs/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.RejectHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, ok, err := h.svc.Reject(c.Request.Context(), id, req.VendorID, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgNotAllowed, nil)
		return
	}
	httpkit.OK(c, result)
}

// FirstContact timestamps the vendor's first contact with the lead.
// POST /api/v1/handoffs/:id/first-contact
func (h *Handler) FirstContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.FirstContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, ok, err := h.svc.MarkFirstContact(c.Request.Context(), id, req.VendorID)
	if httpkit.HandleError(c, err) {
		return
	}
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgNotAllowed, nil)
		return
	}
	httpkit.OK(c, result)
}

// Feedback stores the vendor's quality score for a received handoff.
// POST /api/v1/handoffs/:id/feedback
func (h *Handler) Feedback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, ok, err := h.svc.AddFeedback(c.Request.Context(), id, req.VendorID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgNotAllowed, nil)
		return
	}
	httpkit.OK(c, result)
}

// Pending lists a vendor's pending handoffs in worklist order.
// GET /api/v1/handoffs/pending?vendorId=
func (h *Handler) Pending(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Query("vendorId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidVendorID, nil)
		return
	}

	result, err := h.svc.PendingForVendor(c.Request.Context(), vendorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Overdue lists accepted handoffs past their SLA deadline without contact.
// GET /api/v1/handoffs/overdue
func (h *Handler) Overdue(c *gin.Context) {
	result, err := h.svc.OverdueSLA(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves a handoff with joined names.
// GET /api/v1/handoffs/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Details(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListByQualifier lists a qualifier's handoffs, optionally filtered by status.
// GET /api/v1/handoffs?qualifierId=&status=
func (h *Handler) ListByQualifier(c *gin.Context) {
	qualifierID, err := uuid.Parse(c.Query("qualifierId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQualifier, nil)
		return
	}

	var status *domain.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidStatus, nil)
			return
		}
		status = &parsed
	}

	result, err := h.svc.ByQualifier(c.Request.Context(), qualifierID, status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
