// Package amqp publishes engine events to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/conform/internal/logging"
	"github.com/aretw0/conform/pkg/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys used for published events.
const (
	KeyDefinitionSaved   = "definition.saved"
	KeyDefinitionDeleted = "definition.deleted"
	KeyValidatedPrefix   = "document.validated."
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends DefinitionEvent and ValidationEvent messages as JSON.
type Publisher struct {
	mu       sync.RWMutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used to report failed publishes from hooks.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithPublishTimeout bounds each publish made by the lifecycle hooks.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// Dial connects to the broker at url and declares exchange.
func Dial(url, exchange string, opts ...Option) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	p, err := NewPublisher(ch, exchange, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares a durable topic exchange on ch and returns a publisher for it.
func NewPublisher(ch Channel, exchange string, opts ...Option) (*Publisher, error) {
	if ch == nil {
		return nil, fmt.Errorf("channel cannot be nil")
	}
	if exchange == "" {
		return nil, fmt.Errorf("exchange name cannot be empty")
	}

	p := &Publisher{
		channel:  ch,
		exchange: exchange,
		timeout:  5 * time.Second,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}
	return p, nil
}

// Publish sends event to the exchange with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.channel == nil {
		return fmt.Errorf("publisher is closed")
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// Hooks returns lifecycle hooks that publish every engine event.
// Publish failures are logged; they never fail the operation that raised the event.
func (p *Publisher) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDefinitionSaved: func(ctx context.Context, e *domain.DefinitionEvent) {
			p.emit(ctx, KeyDefinitionSaved, e)
		},
		OnDefinitionDeleted: func(ctx context.Context, e *domain.DefinitionEvent) {
			p.emit(ctx, KeyDefinitionDeleted, e)
		},
		OnValidated: func(ctx context.Context, e *domain.ValidationEvent) {
			p.emit(ctx, ValidatedKey(e.Report), e)
		},
	}
}

func (p *Publisher) emit(ctx context.Context, key string, event any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.Publish(ctx, key, event); err != nil {
		p.logger.Warn("event not published", "routing_key", key, "error", err)
	}
}

// ValidatedKey is the routing key for a validation report: document.validated.valid or .invalid.
func ValidatedKey(r *domain.Report) string {
	if r != nil && r.Valid {
		return KeyValidatedPrefix + "valid"
	}
	return KeyValidatedPrefix + "invalid"
}

// Close closes the channel and, when the publisher dialed it, the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.channel != nil {
		firstErr = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}
	return firstErr
}
