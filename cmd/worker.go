package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/freightline/services/settlement/config"
	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/cache"
	"example.com/freightline/services/settlement/internal/database"
	"example.com/freightline/services/settlement/internal/messaging"
	"example.com/freightline/services/settlement/internal/repository"
	"example.com/freightline/services/settlement/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long: `Start the background worker that periodically refolds every
carrier and settlement aggregate from the live child records, repairing
any drift introduced by plain updates.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initialize Redis cache client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize messaging client
	msgClient, err := messaging.NewServiceBusClient(cfg.ServiceBus, "settlement-worker")
	if err != nil {
		return err
	}
	defer msgClient.Close()

	repo := repository.NewRepository(db)
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	svc, err := service.NewService(service.ServiceConfig{
		Repository:      repo,
		Cache:           redisClient,
		MessagingClient: msgClient,
		Tokens:          tokens,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Start the reconciliation cron job
	g.Go(func() error {
		log.WithField("interval", cfg.Worker.ReconcileInterval).
			Info("Starting aggregate reconciliation job")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Worker.ReconcileInterval),
			gocron.NewTask(func() {
				log.Info("Running aggregate reconciliation sweep")
				if err := svc.Reconcile(ctx); err != nil {
					log.WithError(err).Error("Failed to reconcile aggregates")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Start the scheduler
		scheduler.Start()

		// Wait for context cancellation
		<-ctx.Done()

		// Shutdown the scheduler
		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Worker error")
		return err
	}

	log.Info("Worker shutting down gracefully")
	return nil
}
