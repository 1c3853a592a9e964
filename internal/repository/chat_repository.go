package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

// ChatRepo provides data access to the chat_messages table. A message row
// is committed before the realtime layer broadcasts it, so the broadcast
// is only ever a latency optimization.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo returns a new ChatRepo bound to the provided database.
func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

const chatColumns = `id, sender_id, recipient_id, body, listing_id, purchase_id, delivery_status, created_at`

// Create inserts a chat message and populates its ID and timestamp.
func (r *ChatRepo) Create(ctx context.Context, m *model.ChatMessage) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (sender_id, recipient_id, body, listing_id, purchase_id, delivery_status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SenderID, m.RecipientID, m.Body, m.ListingID, m.PurchaseID, m.DeliveryStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = time.Now().UTC()
	return nil
}

// History returns the messages exchanged between two users, oldest first,
// capped at limit.
func (r *ChatRepo) History(ctx context.Context, userA, userB uint64, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chatColumns+`
		 FROM chat_messages
		 WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		userA, userB, userB, userA, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := make([]model.ChatMessage, 0)
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body,
			&m.ListingID, &m.PurchaseID, &m.DeliveryStatus, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Conversations lists the user's chat partners with the latest message of
// each conversation, most recently active first.
func (r *ChatRepo) Conversations(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	// Latest message per partner: rank by created_at/id within each
	// partner bucket and keep the top row.
	const q = `
	SELECT m.id, m.sender_id, m.recipient_id, m.body, m.listing_id, m.purchase_id,
	       m.delivery_status, m.created_at,
	       u.id, u.name, u.email
	FROM chat_messages m
	JOIN users u ON u.id = IF(m.sender_id = ?, m.recipient_id, m.sender_id)
	WHERE m.id IN (
		SELECT MAX(id) FROM chat_messages
		WHERE sender_id = ? OR recipient_id = ?
		GROUP BY IF(sender_id = ?, recipient_id, sender_id)
	)
	ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	convs := make([]model.Conversation, 0)
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.LastMessage.ID, &c.LastMessage.SenderID, &c.LastMessage.RecipientID,
			&c.LastMessage.Body, &c.LastMessage.ListingID, &c.LastMessage.PurchaseID,
			&c.LastMessage.DeliveryStatus, &c.LastMessage.CreatedAt,
			&c.PartnerID, &c.PartnerName, &c.PartnerEmail); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return convs, nil
}
