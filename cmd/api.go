package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/api"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/cache"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/database"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/search"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/storage"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/tracing"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and the realtime event stream`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, readOnlyDB, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}

	// Assign the interface only when the client exists; a typed-nil
	// pointer would defeat the services' nil checks.
	var indexer services.ArticleIndexer
	if elasticClient, err := search.NewElasticClient(cfg.Elastic); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	} else {
		indexer = elasticClient
	}

	store, err := storage.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		return err
	}

	metricsCollector := metrics.NewMetrics()
	hub := realtime.NewHub(cfg.Realtime.ClientBuffer)
	defer hub.Close()

	notificationService := services.NewNotificationService(db, readOnlyDB, hub, metricsCollector)
	svc := api.Services{
		Orders:        services.NewOrderService(db, readOnlyDB, notificationService, hub, metricsCollector, tracer),
		Knowledge:     services.NewKnowledgeService(db, readOnlyDB, notificationService, indexer, hub, metricsCollector),
		Support:       services.NewSupportService(db, readOnlyDB, notificationService, hub, redisCache, metricsCollector),
		Notifications: notificationService,
		Announcements: services.NewAnnouncementService(db, readOnlyDB, hub),
		Dashboard:     services.NewDashboardService(db, readOnlyDB, redisCache, hub, metricsCollector, cfg.Feeds.CacheTTL),
		Feeds:         services.NewFeedService(cfg.Feeds, redisCache),
		Attachments:   services.NewAttachmentService(db, readOnlyDB, store),
		Users:         services.NewUserService(db, readOnlyDB),
	}

	server := api.NewServer(cfg, svc, repositories.NewUserRepository(db, readOnlyDB), redisCache, hub, metricsCollector, tracer)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}
