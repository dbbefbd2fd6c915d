package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/database"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/messaging"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/tracing"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that consumes the dispatch intake queue and runs periodic sweeps`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	g, ctx := errgroup.WithContext(ctx)

	db, readOnlyDB, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}

	metricsCollector := metrics.NewMetrics()
	// This hub is local to the worker process; SSE clients connect to the
	// api process and never see events published here. Notifications the
	// worker creates reach users through the poll endpoint.
	hub := realtime.NewHub(cfg.Realtime.ClientBuffer)
	defer hub.Close()

	notificationService := services.NewNotificationService(db, readOnlyDB, hub, metricsCollector)
	orderService := services.NewOrderService(db, readOnlyDB, notificationService, hub, metricsCollector, tracer)
	announcementService := services.NewAnnouncementService(db, readOnlyDB, hub)

	serviceBus, err := messaging.NewServiceBusClient(cfg.Azure)
	if err != nil {
		return err
	}
	defer serviceBus.Close()

	processor := messaging.NewProcessor(services.NewIntakeAdapter(orderService))

	g.Go(func() error {
		log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting dispatch intake processor")
		return serviceBus.ProcessMessages(ctx, processor.ProcessMessage)
	})

	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		// Remind operators shortly before a scheduled job is due.
		_, err = scheduler.NewJob(
			gocron.DurationJob(5*time.Minute),
			gocron.NewTask(func() {
				notified, err := orderService.NotifyDueSoon(ctx, 30*time.Minute)
				if err != nil {
					log.Error().Err(err).Msg("Failed to send due-soon reminders")
					return
				}
				if notified > 0 {
					log.Info().Int("notified", notified).Msg("Due-soon reminders sent")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Retire announcements whose window closed.
		_, err = scheduler.NewJob(
			gocron.DurationJob(time.Minute),
			gocron.NewTask(func() {
				if _, err := announcementService.SweepExpired(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to sweep expired announcements")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
