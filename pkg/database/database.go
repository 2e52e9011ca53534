package database

import (
	"fmt"
	"time"

	"ecommerce-api/internal/config"
	"ecommerce-api/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connection holds the database handle and configuration
type Connection struct {
	DB     *gorm.DB
	Config *config.DatabaseConfig
	Logger *logger.Logger
}

// Open connects to the database selected by cfg.Type (memory, sqlite or postgres).
func Open(cfg *config.DatabaseConfig, log *logger.Logger) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: logger.NewGormLogger(log, cfg.LogQueries),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// postgres keeps *pgconn.PgError so Classify can read SQLSTATE and detail
		TranslateError: cfg.Type != "postgres",
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Type == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		// each sqlite memory connection is a separate database
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("Connected to database",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)

	return &Connection{
		DB:     db,
		Config: cfg,
		Logger: log,
	}, nil
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory(log *logger.Logger) (*Connection, error) {
	return Open(&config.DatabaseConfig{Type: "memory"}, log)
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "memory":
		return sqlite.Open(":memory:"), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	case "postgres":
		return postgres.Open(buildPostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Close closes the database connection
func (c *Connection) Close() error {
	if c.DB == nil {
		return nil
	}

	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	c.Logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (c *Connection) Ping() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// HealthCheck pings the database and runs a trivial statement
func (c *Connection) HealthCheck() error {
	if err := c.Ping(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var one int
	if err := c.DB.Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("probe query failed: %w", err)
	}

	return nil
}

// Stats returns connection pool statistics
func (c *Connection) Stats() map[string]interface{} {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
}

// Migrate runs database migrations
func (c *Connection) Migrate(models ...interface{}) error {
	if len(models) == 0 {
		return fmt.Errorf("no models provided for migration")
	}

	c.Logger.Info("Starting database migration", zap.Int("models_count", len(models)))

	if err := c.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// buildPostgresDSN builds a PostgreSQL Data Source Name from configuration
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// Connect opens the database with retries, for containers that start before their database
func Connect(cfg *config.DatabaseConfig, log *logger.Logger, maxRetries int, retryDelay time.Duration) (*Connection, error) {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		conn, err := Open(cfg, log)
		if err == nil {
			if err = conn.HealthCheck(); err == nil {
				return conn, nil
			}
			_ = conn.Close()
		}
		lastErr = err

		if i < maxRetries-1 {
			log.Warn("Database connection attempt failed, retrying",
				zap.Int("attempt", i+1),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", retryDelay),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}
