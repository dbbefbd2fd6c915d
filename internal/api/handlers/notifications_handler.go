package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
)

// NotificationsHandler handles the notification bell HTTP requests
type NotificationsHandler struct {
	notifications *services.NotificationService
	pollInterval  time.Duration
}

// NewNotificationsHandler creates a new notifications handler. The poll
// interval is echoed to clients so they pace the backstop poll from
// server configuration.
func NewNotificationsHandler(notifications *services.NotificationService, pollInterval time.Duration) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, pollInterval: pollInterval}
}

// RegisterRoutes wires the notification endpoints.
func (h *NotificationsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.Poll)
	rg.POST("/notifications/:id/read", h.MarkRead)
	rg.POST("/notifications/read-all", h.MarkAllRead)
	rg.POST("/notifications/forget", h.ForgetSession)
}

// Poll returns pending notifications plus the sound cue decision.
func (h *NotificationsHandler) Poll(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	result, err := h.notifications.Poll(c.Request.Context(), middleware.CurrentUser(c).ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":                 result.Items,
		"unread":                result.Unread,
		"play_sound":            result.PlaySound,
		"poll_interval_seconds": int(h.pollInterval.Seconds()),
	})
}

// MarkRead marks one notification as read.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead clears the caller's pending notifications.
func (h *NotificationsHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ForgetSession drops the caller's unread baseline on sign-out.
func (h *NotificationsHandler) ForgetSession(c *gin.Context) {
	h.notifications.ForgetSession(middleware.CurrentUser(c).ID)
	c.Status(http.StatusNoContent)
}
