package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/tracing"
)

// OrdersHandler handles the dispatch queue HTTP requests
type OrdersHandler struct {
	orders *services.OrderService
	tracer tracing.Tracer
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(orders *services.OrderService, tracer tracing.Tracer) *OrdersHandler {
	return &OrdersHandler{orders: orders, tracer: tracer}
}

// RegisterRoutes wires the order endpoints into the authenticated group.
func (h *OrdersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.List)
	rg.GET("/orders/:id", h.Get)
	rg.POST("/orders", h.Create)
	rg.PATCH("/orders/:id/status", h.ChangeStatus)
	rg.PATCH("/orders/:id/schedule", h.Reschedule)
	rg.POST("/orders/:id/bill", h.Bill)
	rg.POST("/orders/:id/notes", h.AddNote)

	admin := rg.Group("", middleware.RequireRole(models.RoleAdmin))
	admin.POST("/orders/:id/exclude", h.Exclude)
	admin.DELETE("/orders/:id", h.Delete)
}

// List returns one queue tab.
func (h *OrdersHandler) List(c *gin.Context) {
	views, err := h.orders.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

// Get returns one order with its notes and derived fields.
func (h *OrdersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	view, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create registers an order directly from the UI.
func (h *OrdersHandler) Create(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-order")
	defer h.tracer.EndTransaction(txn)

	var req services.OrderIntakeCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid order request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	req.CreatedBy = &actor.ID

	order, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

type changeStatusRequest struct {
	Status      string     `json:"status" binding:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// ChangeStatus moves an order through the state machine.
func (h *OrdersHandler) ChangeStatus(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-change-order-status")
	defer h.tracer.EndTransaction(txn)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.ChangeStatus(c.Request.Context(), middleware.CurrentUser(c), id, req.Status, req.ScheduledAt)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// Reschedule moves the time of an Agendado order.
func (h *OrdersHandler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Reschedule(c.Request.Context(), middleware.CurrentUser(c), id, req.ScheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Bill marks a completed order as billed.
func (h *OrdersHandler) Bill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orders.Bill(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type addNoteRequest struct {
	Text         string     `json:"text"`
	AttachmentID *uuid.UUID `json:"attachment_id"`
}

// AddNote appends a note to the order timeline.
func (h *OrdersHandler) AddNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" && req.AttachmentID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note text or attachment is required"})
		return
	}

	note, err := h.orders.AddNote(c.Request.Context(), middleware.CurrentUser(c), id, req.Text, req.AttachmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// Exclude soft-removes an order from the queue.
func (h *OrdersHandler) Exclude(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	if err := h.orders.Exclude(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.OrderExcluded})
}

// Delete hard-removes an order and its ledger entry.
func (h *OrdersHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	if err := h.orders.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
