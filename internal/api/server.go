package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/handlers"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api/middleware"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/cache"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/tracing"
)

// Services bundles everything the HTTP layer serves.
type Services struct {
	Orders        *services.OrderService
	Knowledge     *services.KnowledgeService
	Support       *services.SupportService
	Notifications *services.NotificationService
	Announcements *services.AnnouncementService
	Dashboard     *services.DashboardService
	Feeds         *services.FeedService
	Attachments   *services.AttachmentService
	Users         *services.UserService
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	svc        Services
	userRepo   repositories.UserRepository
	cache      *cache.RedisCache
	hub        *realtime.Hub
	metrics    *metrics.Metrics
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	svc Services,
	userRepo repositories.UserRepository,
	redisCache *cache.RedisCache,
	hub *realtime.Hub,
	m *metrics.Metrics,
	tracer tracing.Tracer,
) *Server {
	server := &Server{
		config:   cfg,
		svc:      svc,
		userRepo: userRepo,
		cache:    redisCache,
		hub:      hub,
		metrics:  m,
		tracer:   tracer,
	}

	server.router = server.setupRouter()
	server.httpServer = &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      server.router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: 0, // SSE connections stay open
	}

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.ServerMode != "" {
		gin.SetMode(s.config.ServerMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	if s.config.CorsEnabled {
		router.Use(middleware.CORS(s.config.CorsOrigins))
	}
	if app := s.tracer.Application(); app != nil {
		router.Use(nrgin.Middleware(app))
	}

	metricsHandler := handlers.NewMetricsHandler(s.metrics, s.hub, s.tracer)
	router.GET("/health", metricsHandler.HandleGetHealthCheck)
	router.GET("/metrics", metricsHandler.HandleGetMetrics)

	authed := router.Group("/api/v1", middleware.Auth(s.userRepo, s.cache))
	handlers.NewOrdersHandler(s.svc.Orders, s.tracer).RegisterRoutes(authed)
	handlers.NewKnowledgeHandler(s.svc.Knowledge).RegisterRoutes(authed)
	handlers.NewSupportHandler(s.svc.Support, s.hub).RegisterRoutes(authed)
	handlers.NewNotificationsHandler(s.svc.Notifications, s.config.Realtime.PollInterval).RegisterRoutes(authed)
	handlers.NewAnnouncementsHandler(s.svc.Announcements).RegisterRoutes(authed)
	handlers.NewDashboardHandler(s.svc.Dashboard, s.svc.Feeds).RegisterRoutes(authed)
	handlers.NewAttachmentsHandler(s.svc.Attachments).RegisterRoutes(authed)
	handlers.NewUsersHandler(s.svc.Users).RegisterRoutes(authed)
	handlers.NewEventsHandler(s.hub).RegisterRoutes(authed)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
