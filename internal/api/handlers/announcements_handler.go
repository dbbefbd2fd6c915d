package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
)

// AnnouncementsHandler handles announcements, release notes and license
// request HTTP endpoints
type AnnouncementsHandler struct {
	announcements *services.AnnouncementService
}

// NewAnnouncementsHandler creates a new announcements handler
func NewAnnouncementsHandler(announcements *services.AnnouncementService) *AnnouncementsHandler {
	return &AnnouncementsHandler{announcements: announcements}
}

// RegisterRoutes wires the announcement endpoints.
func (h *AnnouncementsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/announcements/active", h.Active)
	rg.GET("/system-updates", h.Updates)
	rg.POST("/license-requests", h.RequestLicenses)

	manager := rg.Group("", middleware.RequireRole(models.RoleManager))
	manager.GET("/announcements", h.List)
	manager.POST("/announcements", h.Create)
	manager.DELETE("/announcements/:id", h.Delete)

	admin := rg.Group("", middleware.RequireRole(models.RoleAdmin))
	admin.POST("/system-updates", h.PublishUpdate)
	admin.GET("/license-requests", h.ListLicenseRequests)
	admin.POST("/license-requests/:id/decide", h.DecideLicenseRequest)
}

// Active returns the announcements currently inside their window.
func (h *AnnouncementsHandler) Active(c *gin.Context) {
	items, err := h.announcements.ActiveFor(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": items})
}

// List returns every announcement for the admin screen.
func (h *AnnouncementsHandler) List(c *gin.Context) {
	items, err := h.announcements.ListAnnouncements(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": items})
}

// Create publishes an announcement.
func (h *AnnouncementsHandler) Create(c *gin.Context) {
	var req services.AnnouncementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcement, err := h.announcements.CreateAnnouncement(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

// Delete retires an announcement.
func (h *AnnouncementsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	if err := h.announcements.DeleteAnnouncement(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Updates returns release notes newer than the caller's last seen entry.
func (h *AnnouncementsHandler) Updates(c *gin.Context) {
	var lastSeen *uuid.UUID
	if raw := c.Query("last_seen"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_seen id"})
			return
		}
		lastSeen = &id
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	updates, err := h.announcements.UpdatesSince(c.Request.Context(), lastSeen, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// PublishUpdate records and broadcasts a release note.
func (h *AnnouncementsHandler) PublishUpdate(c *gin.Context) {
	var req services.SystemUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := h.announcements.PublishSystemUpdate(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, update)
}

type licenseRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Reason   string `json:"reason"`
}

// RequestLicenses files a seat increase request.
func (h *AnnouncementsHandler) RequestLicenses(c *gin.Context) {
	var req licenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.announcements.RequestLicenses(c.Request.Context(), middleware.CurrentUser(c), req.Quantity, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, request)
}

// ListLicenseRequests returns seat requests.
func (h *AnnouncementsHandler) ListLicenseRequests(c *gin.Context) {
	requests, err := h.announcements.ListLicenseRequests(c.Request.Context(), middleware.CurrentUser(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type licenseDecisionRequest struct {
	Approve bool `json:"approve"`
}

// DecideLicenseRequest approves or denies a seat request.
func (h *AnnouncementsHandler) DecideLicenseRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req licenseDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.announcements.DecideLicenseRequest(c.Request.Context(), middleware.CurrentUser(c), id, req.Approve); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
