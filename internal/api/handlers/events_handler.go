package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
)

// EventsHandler exposes the SSE stream
type EventsHandler struct {
	hub *realtime.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// RegisterRoutes wires the stream endpoint.
func (h *EventsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events", h.Stream)
}

// Stream holds the connection open and pushes events until the client
// disconnects.
func (h *EventsHandler) Stream(c *gin.Context) {
	h.hub.ServeHTTP(c.Writer, c.Request, middleware.CurrentUser(c).ID)
}
