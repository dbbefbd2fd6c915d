package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
)

// KnowledgeHandler handles knowledge base HTTP requests
type KnowledgeHandler struct {
	knowledge *services.KnowledgeService
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledge *services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

// RegisterRoutes wires the knowledge base endpoints.
func (h *KnowledgeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/articles", h.List)
	rg.GET("/articles/search", h.Search)
	rg.GET("/articles/:id", h.Get)
	rg.POST("/articles", h.Create)
	rg.PUT("/articles/:id", h.Update)
	rg.POST("/articles/:id/submit", h.Submit)
	rg.POST("/articles/:id/decide", h.Decide)
	rg.POST("/articles/bulk-decide", h.BulkDecide)
	rg.POST("/articles/bulk-delete", h.BulkDelete)
	rg.DELETE("/articles/:id", h.Delete)
}

// List returns the articles visible to the caller.
func (h *KnowledgeHandler) List(c *gin.Context) {
	views, err := h.knowledge.List(c.Request.Context(), middleware.CurrentUser(c), c.Query("status"), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": views})
}

// Get returns one article with the caller's capabilities.
func (h *KnowledgeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	view, err := h.knowledge.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create starts a new draft.
func (h *KnowledgeHandler) Create(c *gin.Context) {
	var req services.ArticleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := h.knowledge.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update edits an article.
func (h *KnowledgeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	var req services.ArticleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := h.knowledge.Update(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type submitRequest struct {
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
}

// Submit sends a draft to an approver.
func (h *KnowledgeHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := h.knowledge.Submit(c.Request.Context(), middleware.CurrentUser(c), id, req.ApproverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type decideRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// Decide records the approver's verdict on one article.
func (h *KnowledgeHandler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := h.knowledge.Decide(c.Request.Context(), middleware.CurrentUser(c), id, req.Approve, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type bulkDecideRequest struct {
	IDs     []uuid.UUID `json:"ids" binding:"required"`
	Approve bool        `json:"approve"`
	Reason  string      `json:"reason"`
}

// BulkDecide applies one verdict to several articles.
func (h *KnowledgeHandler) BulkDecide(c *gin.Context) {
	var req bulkDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decided, skipped, err := h.knowledge.BulkDecide(c.Request.Context(), middleware.CurrentUser(c), req.IDs, req.Approve, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"decided": decided, "skipped": skipped})
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// BulkDelete removes several articles.
func (h *KnowledgeHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, skipped, err := h.knowledge.BulkDelete(c.Request.Context(), middleware.CurrentUser(c), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "skipped": skipped})
}

// Delete removes an article.
func (h *KnowledgeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	if err := h.knowledge.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search runs a full-text query against the article index.
func (h *KnowledgeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	size := 20
	if raw := c.Query("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			size = n
		}
	}

	hits, err := h.knowledge.Search(c.Request.Context(), middleware.CurrentUser(c), query, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}
