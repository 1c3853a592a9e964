package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

// NotificationRepo provides data access to the notifications table.
// Notifications are written outside the workflow transactions: the row is
// a durable copy of an event that already committed, so a failed insert
// only loses a convenience copy, never business state.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the provided database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts an unread notification and populates its ID and timestamp.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, body, kind, link, status) VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Title, n.Body, n.Kind, n.Link, model.NotificationUnread)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	n.Status = model.NotificationUnread
	n.CreatedAt = time.Now().UTC()
	return nil
}

// ListByUser returns the user's notifications, newest first, along with
// the number of unread ones.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Notification, int, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, body, kind, link, status, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Kind, &n.Link, &n.Status, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var unread int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND status = ?`,
		userID, model.NotificationUnread).Scan(&unread)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkAllRead flips every unread notification of the user to read and
// returns how many rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = ? WHERE user_id = ? AND status = ?`,
		model.NotificationRead, userID, model.NotificationUnread)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
