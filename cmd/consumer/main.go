package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-api/internal/config"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/transport/mq"
	"ecommerce-api/pkg/database"
	"ecommerce-api/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Close()

	appLogger.Info("Starting error report consumer",
		zap.String("name", cfg.App.Name+"-consumer"),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	deps, err := initializeConsumerDependencies(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize consumer dependencies", zap.Error(err))
	}
	defer deps.Database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := deps.Consumer.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start error report consumer", zap.Error(err))
	}

	appLogger.Info("Error report consumer started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down consumer...")

	cancel()

	if err := deps.Consumer.Stop(); err != nil {
		appLogger.Error("Failed to stop consumer gracefully", zap.Error(err))
	} else {
		appLogger.Info("Consumer stopped gracefully")
	}

	appLogger.Info("Consumer shutdown complete")
}

// ConsumerDependencies holds all dependencies needed for the consumer
type ConsumerDependencies struct {
	Database *database.Connection
	Archive  repository.ReportArchive
	Handler  mq.ReportHandler
	Consumer mq.Consumer
}

// initializeConsumerDependencies opens the archive database and connects the consumer
func initializeConsumerDependencies(cfg *config.Config, log *logger.Logger) (*ConsumerDependencies, error) {
	conn, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	// the memory database starts empty on every run
	if cfg.Database.AutoMigrate || cfg.Database.Type == "memory" {
		if err := conn.Migrate(&domain.ErrorReport{}); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	archive := repository.NewReportArchive(conn.DB)
	handler := mq.NewArchiveHandler(archive, log.WithComponent("archive").Logger)

	var consumer mq.Consumer
	if cfg.MessageQueue.EnableMock {
		consumer = mq.NewMockConsumer(handler, log.Logger)
		log.Info("Using mock error report consumer")
	} else {
		rabbit, err := mq.NewRabbitMQConsumer(&mq.RabbitMQConsumerConfig{
			URL:           cfg.MessageQueue.URL,
			ExchangeName:  cfg.MessageQueue.ExchangeName,
			QueueName:     cfg.MessageQueue.QueueName,
			RoutingKeys:   []string{cfg.MessageQueue.RoutingKey},
			Durable:       cfg.MessageQueue.Durable,
			AutoDelete:    cfg.MessageQueue.AutoDelete,
			PrefetchCount: cfg.MessageQueue.PrefetchCount,
		}, handler, log.Logger)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ consumer: %w", err)
		}
		consumer = rabbit
		log.Info("Using RabbitMQ error report consumer")
	}

	return &ConsumerDependencies{
		Database: conn,
		Archive:  archive,
		Handler:  handler,
		Consumer: consumer,
	}, nil
}

// Health check for the consumer application
func init() {
	if os.Getenv("HEALTH_CHECK") == "true" {
		fmt.Println("OK")
		os.Exit(0)
	}
}
