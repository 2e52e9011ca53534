package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrEmptyReport = errors.New("event carries no report")

// ReportHandler handles error report events
type ReportHandler interface {
	HandleErrorReported(ctx context.Context, event *ErrorReportEvent) error
}

// Consumer defines the interface for consuming error report events
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// RabbitMQConsumer implements Consumer using RabbitMQ
type RabbitMQConsumer struct {
	connection   *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	queueName    string
	routingKeys  []string
	handler      ReportHandler
	logger       *zap.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	isRunning    bool
}

// RabbitMQConsumerConfig holds configuration for RabbitMQ consumer
type RabbitMQConsumerConfig struct {
	URL           string
	ExchangeName  string
	QueueName     string
	RoutingKeys   []string
	Durable       bool
	AutoDelete    bool
	PrefetchCount int
}

// NewRabbitMQConsumer creates a new RabbitMQ consumer
func NewRabbitMQConsumer(config *RabbitMQConsumerConfig, handler ReportHandler, logger *zap.Logger) (*RabbitMQConsumer, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Qos(config.PrefetchCount, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
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

	queue, err := ch.QueueDeclare(
		config.QueueName,  // name
		config.Durable,    // durable
		config.AutoDelete, // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, routingKey := range config.RoutingKeys {
		if err := ch.QueueBind(queue.Name, routingKey, config.ExchangeName, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to routing key %s: %w", routingKey, err)
		}
	}

	consumer := newConsumer(handler, logger)
	consumer.connection = conn
	consumer.channel = ch
	consumer.exchangeName = config.ExchangeName
	consumer.queueName = queue.Name
	consumer.routingKeys = config.RoutingKeys

	logger.Info("RabbitMQ consumer initialized",
		zap.String("exchange", config.ExchangeName),
		zap.String("queue", queue.Name),
		zap.Strings("routing_keys", config.RoutingKeys),
	)

	return consumer, nil
}

func newConsumer(handler ReportHandler, logger *zap.Logger) *RabbitMQConsumer {
	return &RabbitMQConsumer{
		handler:  handler,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start starts consuming messages
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return errors.New("consumer is already running")
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.isRunning = true
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		c.logger.Info("Starting message consumption")

		for {
			select {
			case <-c.stopChan:
				c.logger.Info("Stopping message consumption")
				return
			case <-ctx.Done():
				c.logger.Info("Context cancelled, stopping message consumption")
				return
			case delivery, ok := <-msgs:
				if !ok {
					c.logger.Warn("Message channel closed")
					return
				}
				c.handleMessage(ctx, delivery)
			}
		}
	}()

	go c.handleConnectionClose()

	c.logger.Info("Consumer started successfully")
	return nil
}

// Stop stops the consumer
func (c *RabbitMQConsumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return nil
	}

	c.logger.Info("Stopping consumer...")

	close(c.stopChan)
	c.wg.Wait()

	var errs []error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}

	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}

	c.isRunning = false

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.logger.Info("Consumer stopped successfully")
	return nil
}

func (c *RabbitMQConsumer) handleMessage(ctx context.Context, delivery amqp.Delivery) {
	logger := c.logger.With(
		zap.String("message_id", delivery.MessageId),
		zap.String("routing_key", delivery.RoutingKey),
	)

	var event ErrorReportEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		logger.Error("Failed to unmarshal event", zap.Error(err))
		c.rejectMessage(delivery, false)
		return
	}

	if event.Type != EventTypeErrorReported {
		logger.Warn("Unknown event type", zap.String("event_type", string(event.Type)))
		c.ackMessage(delivery)
		return
	}

	if err := c.handler.HandleErrorReported(ctx, &event); err != nil {
		retry := isRetryableError(err)
		logger.Error("Failed to handle event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.Bool("requeue", retry),
		)
		c.rejectMessage(delivery, retry)
		return
	}

	c.ackMessage(delivery)
	logger.Debug("Event processed", zap.String("event_id", event.ID))
}

func (c *RabbitMQConsumer) ackMessage(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.logger.Error("Failed to ack message",
			zap.Error(err),
			zap.String("message_id", delivery.MessageId),
		)
	}
}

func (c *RabbitMQConsumer) rejectMessage(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Reject(requeue); err != nil {
		c.logger.Error("Failed to reject message",
			zap.Error(err),
			zap.String("message_id", delivery.MessageId),
			zap.Bool("requeue", requeue),
		)
	}
}

func (c *RabbitMQConsumer) handleConnectionClose() {
	closeError := <-c.connection.NotifyClose(make(chan *amqp.Error))
	if closeError != nil {
		c.logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeError))
	}
}

// isRetryableError reports whether redelivery could succeed
func isRetryableError(err error) bool {
	if errors.Is(err, repository.ErrDatabaseConnection) || errors.Is(err, repository.ErrQueryTimeout) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "timeout", "temporary", "unavailable"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ArchiveHandler stores every reported error in the error_reports table
type ArchiveHandler struct {
	archive repository.ReportArchive
	logger  *zap.Logger
}

// NewArchiveHandler creates a handler backed by archive
func NewArchiveHandler(archive repository.ReportArchive, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{archive: archive, logger: logger}
}

// HandleErrorReported archives the report carried by event
func (h *ArchiveHandler) HandleErrorReported(ctx context.Context, event *ErrorReportEvent) error {
	if event.Report == nil {
		return ErrEmptyReport
	}

	report := *event.Report
	report.ID = 0
	if report.OccurredAt.IsZero() {
		report.OccurredAt = event.Timestamp
	}

	if err := h.archive.Archive(ctx, &report); err != nil {
		return fmt.Errorf("failed to archive error report %s: %w", report.RequestID, err)
	}

	h.logger.Info("Error report archived",
		zap.String("event_id", event.ID),
		zap.String("request_id", report.RequestID),
		zap.String("error", report.ErrorName),
		zap.String("url", report.URL),
	)
	return nil
}

// MockConsumer feeds events straight to a handler
type MockConsumer struct {
	handler   ReportHandler
	logger    *zap.Logger
	mu        sync.Mutex
	isRunning bool
	events    []ErrorReportEvent
}

// NewMockConsumer creates a new mock consumer
func NewMockConsumer(handler ReportHandler, logger *zap.Logger) *MockConsumer {
	return &MockConsumer{handler: handler, logger: logger}
}

func (m *MockConsumer) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = true
	m.logger.Info("Mock consumer started")
	return nil
}

func (m *MockConsumer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = false
	m.logger.Info("Mock consumer stopped")
	return nil
}

// Deliver hands a report to the handler as if it came off the queue
func (m *MockConsumer) Deliver(ctx context.Context, report *domain.ErrorReport) error {
	event := newErrorReportEvent(report)

	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	return m.handler.HandleErrorReported(ctx, event)
}

// ProcessedEvents returns the delivered events
func (m *MockConsumer) ProcessedEvents() []ErrorReportEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ErrorReportEvent, len(m.events))
	copy(out, m.events)
	return out
}

// IsRunning returns whether the consumer is running
func (m *MockConsumer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}
