package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"orderdesk/internal/cache"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/handler"
	"orderdesk/internal/logger"
	"orderdesk/internal/metrics"
	"orderdesk/internal/middleware"
	"orderdesk/internal/normalize"
	"orderdesk/internal/queue"
	"orderdesk/internal/repository"
	"orderdesk/internal/risk"
	"orderdesk/internal/service"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

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
	})
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("API server failed", zap.Error(err))
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

	m := metrics.New()
	orders := repository.NewOrderRepository(db)
	customers := repository.NewCustomerRepository(db)
	aggregator := service.NewAggregator(orders, customers, profileCache, m, log)

	var (
		notifier   service.Notifier = service.NewSyncNotifier(aggregator, log)
		queueProbe service.QueueProbe
	)
	if cfg.IsAsyncAggregation() {
		conn, err := queue.NewConnection(cfg.GetRabbitMQURL(), log)
		if err != nil {
			return err
		}
		defer conn.Close()

		publisher, err := queue.NewPublisher(conn, cfg.RabbitMQ.QueueName)
		if err != nil {
			return err
		}
		notifier = service.NewQueueNotifier(publisher, aggregator, log)
		queueProbe = conn
		log.Info("Customer aggregation handed to worker", zap.String("queue", cfg.RabbitMQ.QueueName))
	}

	location := cfg.Location()
	classifier := risk.NewClassifier(cfg.Risk.HighRiskRegions)
	writer := service.NewOrderWriter(orders, notifier, log)
	ingest := service.NewIngestService(writer, m, log,
		normalize.NewShopify(classifier, normalize.WithLocation(location)),
		normalize.NewShiprocket(normalize.WithLocation(location)),
	)
	orderService := service.NewOrderService(orders, customers, notifier, log)
	customerService := service.NewCustomerService(customers, orders, profileCache, location, log)
	healthService := service.NewHealthService(db, queueProbe, version)

	router := handler.NewRouter(handler.Handlers{
		Webhooks:  handler.NewWebhookHandler(ingest),
		Orders:    handler.NewOrderHandler(orderService),
		Customers: handler.NewCustomerHandler(customerService),
		Exports:   handler.NewExportHandler(orderService),
		Health:    handler.NewHealthHandler(healthService),
	}, handler.RouterConfig{
		Admin:   middleware.Credentials{Username: cfg.Auth.AdminUsername, Password: cfg.Auth.AdminPassword},
		Viewer:  middleware.Credentials{Username: cfg.Auth.ViewerUsername, Password: cfg.Auth.ViewerPassword},
		Metrics: m,
		Logger:  log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("aggregation", cfg.Aggregation.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("API server stopped")
	return nil
}
