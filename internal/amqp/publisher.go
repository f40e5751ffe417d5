package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// publishChannel is the part of *amqp091.Channel the publisher needs
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher forwards domain events to a topic exchange, routed by event type
// ("transaction.created", "installment_group.created", ...). It implements
// websocket.EventPublisher so it can sit next to the hub in a MultiPublisher.
type Publisher struct {
	conn     *amqp091.Connection
	channel  publishChannel
	exchange string
	mu       sync.Mutex
}

var _ websocket.EventPublisher = (*Publisher)(nil)

// NewPublisher dials the broker and declares the exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish sends the event without blocking the caller on broker errors; failures are logged
func (p *Publisher) Publish(companyID uuid.UUID, event websocket.Event) {
	if err := p.publish(context.Background(), companyID, event); err != nil {
		log.Warn().
			Err(err).
			Str("company_id", companyID.String()).
			Str("event_type", event.Type).
			Msg("Failed to publish event to broker")
	}
}

func (p *Publisher) publish(ctx context.Context, companyID uuid.UUID, event websocket.Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp091 channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			MessageId:    uuid.NewString(),
			Headers:      amqp091.Table{"company_id": companyID.String()},
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Debug().
		Str("company_id", companyID.String()).
		Str("event_type", event.Type).
		Str("exchange", p.exchange).
		Msg("Published event to broker")
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
