package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartSeatEventConsumer connects to RabbitMQ, declares the seat.events
// queue and consumes it forever, appending one line per event to
// logs/seat-events.log. It runs a reconnect loop with capped backoff and
// never returns under normal operation; malformed messages are rejected
// without requeue so a poison message cannot wedge the queue.
func StartSeatEventConsumer(url string, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("seat-event consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, log); err != nil {
			log.Warn("seat-event consumer: loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("seat-event consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(SeatEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(SeatEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := appendAuditLine(d.Body); err != nil {
			log.Warn("seat-event consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func appendAuditLine(body []byte) error {
	var ev SeatEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "seat-events.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s | screening_id=%d | seat_id=%d", ev.OccurredAt, ev.Type, ev.ScreeningID, ev.SeatID)
	if ev.SeatLabel != "" {
		fmt.Fprintf(&sb, " | seat=%s", ev.SeatLabel)
	}
	if ev.HolderID != nil {
		fmt.Fprintf(&sb, " | holder_id=%d", *ev.HolderID)
	}
	if ev.Reference != "" {
		fmt.Fprintf(&sb, " | reference=%s", ev.Reference)
	}
	if ev.ExpiresAt != "" {
		fmt.Fprintf(&sb, " | expires_at=%s", ev.ExpiresAt)
	}
	sb.WriteByte('\n')

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
