package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/config"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service"
	httpTransport "ecommerce-api/internal/transport/http"
	"ecommerce-api/internal/transport/mq"
	"ecommerce-api/internal/usecase"
	"ecommerce-api/pkg/database"
	"ecommerce-api/pkg/logger"
	"ecommerce-api/pkg/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	connectRetries    = 5
	connectRetryDelay = 2 * time.Second
	lookupTimeout     = 2 * time.Second
)

func main() {
	// A missing .env is fine; the environment may already be populated
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

	appLogger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	deps, err := initializeDependencies(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	e := httpTransport.NewServer(httpTransport.ServerOptions{
		Config:    cfg,
		Logger:    appLogger,
		Formatter: deps.Formatter,
		Reporter:  deps.Reporter,
		Tokens:    deps.Tokens,
	}, deps.Handlers...)

	startServer(e, cfg, appLogger, deps)
}

// Dependencies holds all application dependencies
type Dependencies struct {
	Database  *database.Connection
	Formatter *envelope.Formatter
	Tokens    *auth.TokenProvider
	Reporter  httpTransport.Reporter
	reporter  mq.ErrorReporter
	Handlers  []httpTransport.Routes
}

// initializeDependencies initializes all application dependencies
func initializeDependencies(cfg *config.Config, log *logger.Logger) (*Dependencies, error) {
	conn, err := database.Connect(&cfg.Database, log, connectRetries, connectRetryDelay)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := conn.Migrate(domain.Models()...); err != nil {
			conn.Close()
			return nil, err
		}
	}

	catalog, err := envelope.DefaultCatalog()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to load error catalog: %w", err)
	}

	tokens, err := newTokenProvider(cfg, log)
	if err != nil {
		conn.Close()
		return nil, err
	}

	deps := &Dependencies{
		Database:  conn,
		Formatter: envelope.NewFormatter(catalog, cfg.IsProduction()),
		Tokens:    tokens,
	}

	if cfg.MessageQueue.EnableMonitoring {
		deps.reporter = newReporter(cfg, log)
		deps.Reporter = deps.reporter
	} else {
		log.Info("Error monitoring disabled")
	}

	db := conn.DB
	v := validator.New()
	zl := log.Logger

	products := service.NewProductService(repository.NewStore[domain.Product](db, "product"), zl)
	productUseCase := usecase.NewProductUseCase(
		products,
		repository.NewCategoryLookup(db, lookupTimeout),
		cfg.Media.AccountName(),
		zl,
	)
	if cfg.Media.AccountName() == "" {
		log.Warn("No image provider account configured, image variants use the original URL")
	}

	deps.Handlers = []httpTransport.Routes{
		httpTransport.NewProductHandler(productUseCase),
		httpTransport.NewCartHandler(service.NewCartService(repository.NewStore[domain.Cart](db, "cart"), zl), v),
		httpTransport.NewOrderHandler(service.NewOrderService(repository.NewStore[domain.Order](db, "order"), zl)),
		httpTransport.NewAddressHandler(service.NewAddressService(repository.NewStore[domain.Address](db, "address"), zl)),
		httpTransport.NewReviewHandler(service.NewReviewService(repository.NewStore[domain.Review](db, "review"), zl)),
		httpTransport.NewUserHandler(service.NewRoleService(repository.NewRoleRepository(db), zl), v),
		httpTransport.NewHealthHandler(conn, cfg.App.Version, zl),
	}

	return deps, nil
}

// newTokenProvider builds the bearer token verifier. Outside production a missing secret
// is replaced by a random one, so tokens do not survive a restart.
func newTokenProvider(cfg *config.Config, log *logger.Logger) (*auth.TokenProvider, error) {
	authCfg := cfg.Auth
	if authCfg.JWTSecret == "" && !cfg.IsProduction() {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		authCfg.JWTSecret = hex.EncodeToString(secret)
		log.Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	return auth.NewTokenProvider(authCfg)
}

// newReporter connects the RabbitMQ reporter, falling back to the in-memory one
func newReporter(cfg *config.Config, log *logger.Logger) mq.ErrorReporter {
	log = log.WithComponent("monitoring")
	if cfg.MessageQueue.EnableMock {
		log.Info("Using mock error reporter")
		return mq.NewMockReporter(log.Logger)
	}

	reporter, err := mq.NewRabbitMQReporter(&mq.RabbitMQReporterConfig{
		URL:            cfg.MessageQueue.URL,
		ExchangeName:   cfg.MessageQueue.ExchangeName,
		RoutingKey:     cfg.MessageQueue.RoutingKey,
		Durable:        cfg.MessageQueue.Durable,
		AutoDelete:     cfg.MessageQueue.AutoDelete,
		PublishTimeout: cfg.MessageQueue.PublishTimeout,
	}, log.Logger)
	if err != nil {
		log.Warn("Failed to initialize RabbitMQ reporter, using mock", zap.Error(err))
		return mq.NewMockReporter(log.Logger)
	}

	log.Info("Using RabbitMQ error reporter")
	return reporter
}

// startServer starts the HTTP server with graceful shutdown
func startServer(e *echo.Echo, cfg *config.Config, log *logger.Logger, deps *Dependencies) {
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 2,
	}

	go func() {
		log.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.Duration("read_timeout", server.ReadTimeout),
			zap.Duration("write_timeout", server.WriteTimeout),
		)

		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	} else {
		log.Info("Server exited gracefully")
	}

	if deps.reporter != nil {
		if err := deps.reporter.Close(); err != nil {
			log.Error("Failed to close error reporter", zap.Error(err))
		}
	}

	if err := deps.Database.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
}

// Health check for the application
func init() {
	if os.Getenv("HEALTH_CHECK") == "true" {
		fmt.Println("OK")
		os.Exit(0)
	}
}
