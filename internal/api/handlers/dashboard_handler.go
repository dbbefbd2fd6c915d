package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
)

// DashboardHandler handles the dashboard widgets and external feeds
type DashboardHandler struct {
	dashboard *services.DashboardService
	feeds     *services.FeedService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *services.DashboardService, feeds *services.FeedService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, feeds: feeds}
}

// RegisterRoutes wires the dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/board", h.Board)
	rg.POST("/dashboard/refresh", h.Refresh)
	rg.GET("/dashboard/kpis", h.KPIs)
	rg.GET("/feeds/weather", h.Weather)
	rg.GET("/feeds/news", h.News)
	rg.GET("/feeds/slideshow", h.Slideshow)
	rg.GET("/feeds/cities", h.Cities)
}

// Board returns the dashboard snapshot.
func (h *DashboardHandler) Board(c *gin.Context) {
	board, err := h.dashboard.Board(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Refresh recomputes the snapshot, bypassing the cache read.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	board, err := h.dashboard.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// KPIs returns the in-process counters.
func (h *DashboardHandler) KPIs(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.KPIs())
}

// Weather proxies the weather feed for a city.
func (h *DashboardHandler) Weather(c *gin.Context) {
	payload, err := h.feeds.Weather(c.Request.Context(), c.Query("city"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// News proxies the news feed.
func (h *DashboardHandler) News(c *gin.Context) {
	payload, err := h.feeds.News(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// Slideshow proxies the slideshow feed.
func (h *DashboardHandler) Slideshow(c *gin.Context) {
	payload, err := h.feeds.Slideshow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// Cities proxies the city autocomplete feed.
func (h *DashboardHandler) Cities(c *gin.Context) {
	payload, err := h.feeds.Cities(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}
