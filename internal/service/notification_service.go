package service

import (
	"context"
	"log"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/queue"
)

// NotificationStore is the persistence slice NotificationService needs.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Publisher hands a committed notification to the broker for realtime
// fan-out. queue.PublishNotificationCreated is the production value.
type Publisher func(ctx context.Context, ev queue.NotificationCreatedEvent) error

// NotificationService durably records notifications and hands them to the
// broker. It satisfies Notifier. Everything here is best-effort by
// design: the workflow that triggered the notification has already
// committed, so failures are logged and swallowed.
type NotificationService struct {
	store   NotificationStore
	publish Publisher
}

// NewNotificationService wires a NotificationService. publish may be nil
// to disable realtime fan-out (e.g. when the broker is not configured).
func NewNotificationService(store NotificationStore, publish Publisher) *NotificationService {
	return &NotificationService{store: store, publish: publish}
}

// Notify stores an unread notification for the user and publishes the
// created event. The row is committed before the publish, so a broker
// outage degrades to "seen on next poll".
func (s *NotificationService) Notify(ctx context.Context, userID uint64, title, body, kind string, link *string) {
	if userID == 0 || title == "" || body == "" {
		log.Printf("notification: dropping event with missing fields (user=%d title=%q)", userID, title)
		return
	}
	n := model.Notification{UserID: userID, Title: title, Body: body, Kind: kind, Link: link}
	if err := s.store.Create(ctx, &n); err != nil {
		log.Printf("notification: store failed for user %d: %v", userID, err)
		return
	}
	if s.publish == nil {
		return
	}
	ev := queue.NotificationCreatedEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Body:           n.Body,
		Kind:           n.Kind,
		Link:           n.Link,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("notification: publish failed for notification %d: %v", n.ID, err)
	}
}
