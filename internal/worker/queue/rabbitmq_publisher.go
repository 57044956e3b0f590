package queue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RabbitMQPublisher sends persistent JSON messages to one exchange.
type RabbitMQPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

type rabbitMQPublisher struct {
	channel  *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

func NewRabbitMQPublisher(channel *amqp.Channel, exchange string, logger zerolog.Logger) RabbitMQPublisher {
	return &rabbitMQPublisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger,
	}
}

func (p *rabbitMQPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(
		publishCtx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func (p *rabbitMQPublisher) Close() error {
	// Channel is owned by the connection layer.
	p.logger.Info().Msg("RabbitMQ publisher closed")
	return nil
}
