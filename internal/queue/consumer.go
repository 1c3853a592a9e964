package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Deliverer pushes one notification event to the recipient's live
// connection and reports whether a connection was there to receive it.
type Deliverer func(ev NotificationCreatedEvent) bool

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// notification.created queue and starts consuming. Each event is handed
// to deliver; an offline recipient is not an error, the notification row
// is already durable. The function runs a reconnect loop with backoff and
// keeps running until the process exits; run it on its own goroutine.
func StartNotificationConsumer(deliver Deliverer) error {
	url := BrokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("notification-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, deliver); err != nil {
			log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, deliver Deliverer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notification-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(notificationQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(notificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev NotificationCreatedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("notification-consumer: bad payload: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		if deliver(ev) {
			log.Printf("notification-consumer: pushed notification %d to user %d", ev.NotificationID, ev.UserID)
		} else {
			log.Printf("notification-consumer: user %d offline, notification %d stays unread", ev.UserID, ev.NotificationID)
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
