package logger

import (
	"fmt"
	"time"

	"ecommerce-api/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// New creates a new logger instance based on configuration
func New(cfg *config.LoggerConfig) (*Logger, error) {
	encoderConfig := createEncoderConfig(cfg)

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	// zap.Open understands stdout, stderr and file paths
	writeSyncer, _, err := zap.Open(outputPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to open log outputs %v: %w", outputPaths, err)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)

	options := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}

	if cfg.Development {
		options = append(options, zap.Development())
	}

	logger := zap.New(core, options...)

	return &Logger{Logger: logger}, nil
}

// NewDevelopment creates a development logger with sensible defaults
func NewDevelopment() (*Logger, error) {
	cfg := &config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		Development: true,
		EnableColor: true,
		OutputPaths: []string{"stdout"},
	}
	return New(cfg)
}

// NewProduction creates a production logger with sensible defaults
func NewProduction() (*Logger, error) {
	cfg := &config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		Development: false,
		EnableColor: false,
		OutputPaths: []string{"stdout"},
	}
	return New(cfg)
}

// createEncoderConfig creates encoder configuration based on logger config
func createEncoderConfig(cfg *config.LoggerConfig) zapcore.EncoderConfig {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		NameKey:     "logger",
		CallerKey:   "caller",
		FunctionKey: zapcore.OmitKey,
		MessageKey:  "message",
		// StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Development {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if cfg.EnableColor {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}

	if cfg.Format == "console" {
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}

	return encoderConfig
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("component", component))}
}

// LogHTTPRequest logs HTTP request details
func (l *Logger) LogHTTPRequest(method, path, requestID, clientIP string, statusCode int, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.String("client_ip", clientIP),
		zap.Int("status_code", statusCode),
		zap.Duration("latency", duration),
	}

	switch {
	case statusCode >= 500:
		l.Logger.Error("HTTP request", append(fields, zap.Error(err))...)
	case statusCode >= 400:
		l.Logger.Warn("HTTP request", fields...)
	default:
		l.Logger.Info("HTTP request", fields...)
	}
}

// LogDatabaseQuery logs database query details
func (l *Logger) LogDatabaseQuery(query string, rows int64, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("query", query),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", duration),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		l.Logger.Error("Database query failed", fields...)
	} else {
		l.Logger.Debug("Database query executed", fields...)
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// Close closes the logger and flushes any buffered entries
func (l *Logger) Close() error {
	return l.Sync()
}
