package mq

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecommerce-api/internal/domain"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventType represents different types of events
type EventType string

const (
	EventTypeErrorReported EventType = "error.reported"

	eventSource  = "ecommerce-api"
	eventVersion = "1.0"
)

// ErrorReportEvent carries one failed request to the monitoring worker
type ErrorReportEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Report    *domain.ErrorReport    `json:"report"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ErrorReporter forwards failed requests to the monitoring sink
type ErrorReporter interface {
	Report(ctx context.Context, report *domain.ErrorReport) error
	Close() error
}

// RabbitMQReporter implements ErrorReporter using RabbitMQ
type RabbitMQReporter struct {
	connection     *amqp.Connection
	channel        *amqp.Channel
	exchangeName   string
	routingKey     string
	publishTimeout time.Duration
	logger         *zap.Logger
}

// RabbitMQReporterConfig holds configuration for the RabbitMQ reporter
type RabbitMQReporterConfig struct {
	URL            string
	ExchangeName   string
	RoutingKey     string
	Durable        bool
	AutoDelete     bool
	PublishTimeout time.Duration
}

// NewRabbitMQReporter connects to RabbitMQ and declares the monitoring exchange
func NewRabbitMQReporter(config *RabbitMQReporterConfig, logger *zap.Logger) (*RabbitMQReporter, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		config.ExchangeName, // name
		"topic",             // type
		config.Durable,      // durable
		config.AutoDelete,   // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	timeout := config.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	reporter := &RabbitMQReporter{
		connection:     conn,
		channel:        ch,
		exchangeName:   config.ExchangeName,
		routingKey:     config.RoutingKey,
		publishTimeout: timeout,
		logger:         logger,
	}

	go reporter.handleConnectionClose()

	logger.Info("RabbitMQ error reporter initialized",
		zap.String("exchange", config.ExchangeName),
		zap.String("routing_key", config.RoutingKey),
	)

	return reporter, nil
}

// Report publishes an error report event
func (p *RabbitMQReporter) Report(ctx context.Context, report *domain.ErrorReport) error {
	event := newErrorReportEvent(report)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		CorrelationId: report.RequestID,
		Timestamp:     event.Timestamp,
		Type:          string(event.Type),
		Headers: amqp.Table{
			"source":  eventSource,
			"version": eventVersion,
		},
		Body: body,
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchangeName, // exchange
		p.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish error report: %w", err)
	}

	p.logger.Debug("Error report published",
		zap.String("event_id", event.ID),
		zap.String("request_id", report.RequestID),
	)
	return nil
}

// Close closes the reporter connection
func (p *RabbitMQReporter) Close() error {
	var errs []error

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}

	if p.connection != nil {
		if err := p.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.logger.Info("RabbitMQ error reporter closed")
	return nil
}

func (p *RabbitMQReporter) handleConnectionClose() {
	closeError := <-p.connection.NotifyClose(make(chan *amqp.Error))
	if closeError != nil {
		p.logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeError))
	}
}

// MockReporter keeps reports in memory
type MockReporter struct {
	mu      sync.Mutex
	reports []domain.ErrorReport
	err     error
	logger  *zap.Logger
}

// NewMockReporter creates a reporter that records every report
func NewMockReporter(logger *zap.Logger) *MockReporter {
	return &MockReporter{logger: logger}
}

// FailWith makes subsequent reports fail with err
func (m *MockReporter) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockReporter) Report(_ context.Context, report *domain.ErrorReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, *report)
	m.logger.Debug("Mock: error report recorded", zap.String("request_id", report.RequestID))
	return nil
}

func (m *MockReporter) Close() error {
	return nil
}

// Reports returns a copy of the recorded reports
func (m *MockReporter) Reports() []domain.ErrorReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ErrorReport, len(m.reports))
	copy(out, m.reports)
	return out
}

func newErrorReportEvent(report *domain.ErrorReport) *ErrorReportEvent {
	return &ErrorReportEvent{
		ID:        generateEventID(),
		Type:      EventTypeErrorReported,
		Timestamp: time.Now().UTC(),
		Report:    report,
		Metadata: map[string]interface{}{
			"source":  eventSource,
			"version": eventVersion,
		},
	}
}

func generateEventID() string {
	return "evt_" + ulid.MustNew(ulid.Now(), rand.Reader).String()
}
