package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
)

// UsersHandler handles user directory HTTP requests
type UsersHandler struct {
	users *services.UserService
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// RegisterRoutes wires the user endpoints.
func (h *UsersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.PUT("/me/photo", h.SetPhoto)
	rg.GET("/users", h.List)
	rg.GET("/users/approvers", h.Approvers)
}

// Me returns the authenticated user.
func (h *UsersHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

type setPhotoRequest struct {
	AttachmentID uuid.UUID `json:"attachment_id" binding:"required"`
}

// SetPhoto updates the caller's profile photo.
func (h *UsersHandler) SetPhoto(c *gin.Context) {
	var req setPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetPhoto(c.Request.Context(), middleware.CurrentUser(c), req.AttachmentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns the user directory.
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Approvers returns the users that can review knowledge articles.
func (h *UsersHandler) Approvers(c *gin.Context) {
	users, err := h.users.ListApprovers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvers": users})
}
