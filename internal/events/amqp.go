package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"localcart-be/internal/logger"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const DefaultExchange = "localcart.events"

// Envelope is the body of every published message.
type Envelope struct {
	ID         string    `json:"id"`
	Pattern    string    `json:"pattern"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	now      func() time.Time
}

func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return newAMQPPublisher(conn, ch, exchange), nil
}

func newAMQPPublisher(conn *amqp.Connection, ch channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		now:      time.Now,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	env := Envelope{
		ID:         uuid.NewString(),
		Pattern:    routingKey,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logger.FromCtx(ctx).Debug("publishing event",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
		zap.String("event_id", env.ID),
	)

	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Timestamp:    env.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
