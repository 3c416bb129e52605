package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"suggestboard/internal/queue"
)

// UserEventPublisher pushes registration events onto a durable queue, the
// offline leg of the userAdded fan-out.
type UserEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewUserEventPublisher(conn *amqp.Connection, queueName string) *UserEventPublisher {
	return &UserEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *UserEventPublisher) PublishUserAdded(ctx context.Context, event queue.UserAddedEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal user added event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish user added event failed: %w", err)
	}
	return nil
}
