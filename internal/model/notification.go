package model

import "time"

// NotificationStatus marks whether the recipient has seen a notification.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "UNREAD"
	NotificationRead   NotificationStatus = "READ"
)

// Notification is a durable per-user message created by workflow steps that
// change state visible to that user. The row is committed before any
// realtime push, so a missed push is recovered on the next poll.
type Notification struct {
	ID        uint64             // notifications.id
	UserID    uint64             // notifications.user_id (recipient)
	Title     string             // notifications.title
	Body      string             // notifications.body
	Kind      string             // notifications.kind (e.g. "purchase", "payment")
	Link      *string            // notifications.link (optional deep link)
	Status    NotificationStatus // notifications.status
	CreatedAt time.Time          // notifications.created_at
}
