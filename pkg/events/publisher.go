// Package events publishes exam plan notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event types emitted by the planner.
const (
	TypeExamsScheduled     = "exams.scheduled"
	TypeExamsRoomsAssigned = "exams.rooms_assigned"
	TypeExamUpdated        = "exams.updated"
	TypeExamsCleared       = "exams.cleared"
)

// Event is the JSON envelope sent to consumers.
type Event struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	DepartmentID string      `json:"departmentId,omitempty"`
	RequestID    string      `json:"requestId,omitempty"`
	OccurredAt   time.Time   `json:"occurredAt"`
	Payload      interface{} `json:"payload,omitempty"`
}

// Publisher delivers events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type dialFunc func(url string) (amqpConnection, error)

type connAdapter struct{ *amqp.Connection }

func (c connAdapter) Channel() (amqpChannel, error) {
	return c.Connection.Channel()
}

func dialAMQP(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return connAdapter{conn}, nil
}

// AMQPPublisher publishes persistent JSON messages to a durable queue on the
// default exchange. The connection is dialled lazily and re-dialled after the
// broker drops it.
type AMQPPublisher struct {
	url    string
	queue  string
	dial   dialFunc
	logger *zap.Logger

	mu   sync.Mutex
	conn amqpConnection
}

// NewAMQPPublisher constructs a publisher for the given broker URL and queue.
func NewAMQPPublisher(url, queue string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{url: url, queue: queue, dial: dialAMQP, logger: logger}
}

// Publish sends one event.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := buildPublishing(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		p.reset()
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Sugar().Debugw("event published", "queue", p.queue, "type", event.Type, "event_id", event.ID)
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *AMQPPublisher) connection() (amqpConnection, error) {
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *AMQPPublisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func buildPublishing(event Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		CorrelationId: event.RequestID,
		Type:          event.Type,
		Timestamp:     ts,
		Body:          body,
	}, nil
}

// LogPublisher writes events to the logger instead of a broker. Used when
// event delivery is disabled.
type LogPublisher struct {
	Logger *zap.Logger
}

// Publish logs the event.
func (p LogPublisher) Publish(_ context.Context, event Event) error {
	if p.Logger != nil {
		p.Logger.Sugar().Infow("event", "type", event.Type, "event_id", event.ID, "department_id", event.DepartmentID, "request_id", event.RequestID)
	}
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }
