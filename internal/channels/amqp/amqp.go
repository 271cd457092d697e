package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"attentiond/internal/domain"
)

// Channel publishes dispatch requests to a topic exchange with routing key
// attention.<source>.<level>, so consumers can bind on either axis.
type Channel struct {
	conn     *amqp091.Connection
	exchange string
}

func New(url, exchange string) (*Channel, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &Channel{conn: conn, exchange: exchange}, nil
}

func (c *Channel) Name() string { return "amqp" }

func (c *Channel) Send(ctx context.Context, req domain.DispatchRequest) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("attention.%s.%s", req.Payload.Event.Source, req.Payload.EscalationLevel)
	return ch.PublishWithContext(
		ctx, c.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (c *Channel) Close() error {
	return c.conn.Close()
}
