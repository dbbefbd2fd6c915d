package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
)

// SupportHandler handles support ticket HTTP requests
type SupportHandler struct {
	support *services.SupportService
	hub     *realtime.Hub
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(support *services.SupportService, hub *realtime.Hub) *SupportHandler {
	return &SupportHandler{support: support, hub: hub}
}

// RegisterRoutes wires the support endpoints.
func (h *SupportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tickets", h.List)
	rg.GET("/tickets/:id", h.Get)
	rg.POST("/tickets", h.Open)
	rg.PATCH("/tickets/:id/status", h.ChangeStatus)
	rg.POST("/tickets/:id/messages", h.PostMessage)
	rg.POST("/tickets/:id/join", h.Join)
	rg.POST("/tickets/:id/leave", h.Leave)
}

// List returns tickets visible to the caller.
func (h *SupportHandler) List(c *gin.Context) {
	tickets, err := h.support.List(c.Request.Context(), middleware.CurrentUser(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// Get returns a ticket with its message thread.
func (h *SupportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	ticket, err := h.support.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// Open creates a ticket.
func (h *SupportHandler) Open(c *gin.Context) {
	var req services.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.support.Open(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

type ticketStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus moves a ticket through its lifecycle.
func (h *SupportHandler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req ticketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.support.ChangeStatus(c.Request.Context(), middleware.CurrentUser(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type postMessageRequest struct {
	Body         string     `json:"body"`
	AttachmentID *uuid.UUID `json:"attachment_id"`
}

// PostMessage appends to the ticket thread.
func (h *SupportHandler) PostMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.support.PostMessage(c.Request.Context(), middleware.CurrentUser(c), id, req.Body, req.AttachmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// Join enters the ticket room so thread events stream to this user.
func (h *SupportHandler) Join(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	actor := middleware.CurrentUser(c)
	// Visibility check: joining a room must obey the same scoping as Get.
	if _, err := h.support.Get(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	h.hub.JoinTicket(actor.ID, id)
	c.JSON(http.StatusOK, gin.H{"joined": id})
}

// Leave exits the ticket room.
func (h *SupportHandler) Leave(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	h.hub.LeaveTicket(middleware.CurrentUser(c).ID, id)
	c.JSON(http.StatusOK, gin.H{"left": id})
}
