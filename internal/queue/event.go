// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into realtime
// pushes.
package queue

// NotificationCreatedEvent is published after a notification row has been
// committed. The consumer forwards it to the recipient's live connection;
// losing the event is harmless because the row is the system of record.
type NotificationCreatedEvent struct {
	NotificationID uint64  `json:"notification_id"`
	UserID         uint64  `json:"user_id"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	Kind           string  `json:"kind"`
	Link           *string `json:"link,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// notificationQueueName is the durable queue carrying notification events.
const notificationQueueName = "notification.created"
