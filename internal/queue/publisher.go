package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher publishes seat events to RabbitMQ. Publishing is best-effort:
// errors are logged and returned so callers can ignore them without
// interrupting the request flow; the booking row, not the event stream,
// is the source of truth.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher targeting the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, log: log}
}

// PublishSeatEvent marshals ev and publishes it to the seat.events queue.
// The queue is declared durable and messages are marked persistent. Each
// call dials its own connection; the event volume here is one message per
// committed mutation, so connection churn is not a concern.
func (p *Publisher) PublishSeatEvent(ctx context.Context, ev SeatEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(SeatEventsQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", SeatEventsQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.Error(err), zap.String("type", ev.Type))
		return err
	}
	return nil
}
