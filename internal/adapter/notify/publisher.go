package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

const exchangeKind = "topic"

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var dial = func(url string) (channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

// Publisher sends order events to a RabbitMQ topic exchange. Without a broker
// URL it only logs the events.
type Publisher struct {
	mu       sync.Mutex
	ch       channel
	conn     io.Closer
	exchange string
	logger   *slog.Logger
	now      func() time.Time
}

// New connects to the broker and declares the exchange. An empty url yields a
// log-only publisher.
func New(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	p := &Publisher{exchange: exchange, logger: logger, now: time.Now}
	if url == "" {
		logger.Info("amqp url not set, order events will only be logged")
		return p, nil
	}

	ch, conn, err := dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	p.ch = ch
	p.conn = conn
	return p, nil
}

// Configured reports whether events reach a broker.
func (p *Publisher) Configured() bool {
	return p.ch != nil
}

// Publish sends the event with its type as routing key.
func (p *Publisher) Publish(ctx context.Context, event model.OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	logger := p.logger.With(
		slog.String("event", string(event.Type)),
		slog.String("order", event.OrderNumber),
	)
	if p.ch == nil {
		logger.Info("order event")
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	msg := amqp.Publishing{
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		ContentType:  "application/json",
		Type:         string(event.Type),
		Body:         body,
	}

	// amqp channels must not be shared by concurrent publishers.
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, msg)
	p.mu.Unlock()
	if err != nil {
		logger.Error("publish order event", slog.Any("error", err))
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	logger.Debug("order event published", slog.String("message_id", msg.MessageId))
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.ch = nil
	p.conn = nil
	return err
}
