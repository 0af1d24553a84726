package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dhis2-sre/im-remote-cluster/internal/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NewAMQPPublisher connects to RabbitMQ and declares a durable fanout exchange events are
// published to.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	connection, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %v", err)
	}

	err = channel.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil)
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %v", exchange, err)
	}

	return &AMQPPublisher{
		connection: connection,
		channel:    channel,
		exchange:   exchange,
	}, nil
}

type AMQPPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	mu         sync.Mutex
}

// Publish sends the event as JSON using its type as routing key. The correlation id of ctx is
// passed on to consumers.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Type,
		Body:         body,
	}
	if id, ok := middleware.GetCorrelationID(ctx); ok {
		msg.CorrelationId = id
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg)
	if err != nil {
		return fmt.Errorf("failed to publish event to exchange %q: %v", p.exchange, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.connection.Close()
}
