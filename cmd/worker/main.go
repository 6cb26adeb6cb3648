package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"orderdesk/internal/cache"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/logger"
	"orderdesk/internal/queue"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.IsDevelopment(),
	}).Named("worker")
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Worker failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	profileCache, err := cache.New(cfg, log)
	if err != nil {
		return err
	}
	defer profileCache.Close()

	aggregator := service.NewAggregator(
		repository.NewOrderRepository(db),
		repository.NewCustomerRepository(db),
		profileCache,
		nil,
		log,
	)

	conn, err := queue.NewConnection(cfg.GetRabbitMQURL(), log)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer, err := queue.NewConsumer(conn, cfg.RabbitMQ.QueueName, recomputeHandler(aggregator), log)
	if err != nil {
		return err
	}
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down gracefully")

	if err := consumer.Stop(); err != nil {
		log.Warn("Error stopping consumer", zap.Error(err))
	}

	log.Info("Worker stopped")
	return nil
}

// recomputeHandler rebuilds the customer named by each job
func recomputeHandler(aggregator service.Recomputer) queue.JobHandler {
	return func(ctx context.Context, job *queue.RecomputeJob) error {
		return aggregator.Recompute(ctx, job.Phone)
	}
}
