package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/storage"
)

// AttachmentsHandler handles file upload and download
type AttachmentsHandler struct {
	attachments *services.AttachmentService
}

// NewAttachmentsHandler creates a new attachments handler
func NewAttachmentsHandler(attachments *services.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments}
}

// RegisterRoutes wires the attachment endpoints.
func (h *AttachmentsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/attachments", h.Upload)
	rg.GET("/attachments/:id", h.Download)
	rg.DELETE("/attachments/:id", h.Delete)
}

// Upload accepts one multipart file field named "file".
func (h *AttachmentsHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart file field is required"})
		return
	}
	if header.Size > h.attachments.MaxBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": storage.ErrTooLarge.Error()})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	attachment, err := h.attachments.Upload(c.Request.Context(), middleware.CurrentUser(c), header.Filename, mimeType, header.Size, file)
	if err != nil {
		log.Error().Err(err).Str("file", header.Filename).Msg("Attachment upload failed")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// Download streams the attachment payload.
func (h *AttachmentsHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	attachment, rc, err := h.attachments.Open(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Header("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.MimeType, rc, nil)
}

// Delete removes an attachment.
func (h *AttachmentsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
