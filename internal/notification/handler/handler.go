package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/notification/inapp"
	"salesdesk_backend/platform/httpkit"
)

// Handler exposes the minimal read surface for in-app notifications.
type Handler struct {
	svc *inapp.Service
}

const (
	msgInvalidUserID = "invalid user ID"
	msgInvalidID     = "invalid notification ID"
)

// New creates a new notification handler.
func New(svc *inapp.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns a page of the user's notifications.
// GET /api/v1/notifications?userId=&limit=&offset=
func (h *Handler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.svc.List(c.Request.Context(), userID, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkRead marks one notification as read.
// POST /api/v1/notifications/:id/read?userId=
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), userID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"ok": true})
}

// MarkAllRead marks every notification of the user as read.
// POST /api/v1/notifications/read-all?userId=
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	if err := h.svc.MarkAllRead(c.Request.Context(), userID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"ok": true})
}
