package model

import "time"

// ChatMessage is one direct message between two users. DeliveryStatus is
// advisory only: it records that the message was broadcast to the room, not
// that the recipient acknowledged it.
type ChatMessage struct {
	ID             uint64    // chat_messages.id
	SenderID       uint64    // chat_messages.sender_id
	RecipientID    uint64    // chat_messages.recipient_id
	Body           string    // chat_messages.body
	ListingID      *uint64   // chat_messages.listing_id (optional context)
	PurchaseID     *uint64   // chat_messages.purchase_id (optional context)
	DeliveryStatus string    // chat_messages.delivery_status ("SENT")
	CreatedAt      time.Time // chat_messages.created_at
}

// Conversation summarizes one chat partner for the conversation list: the
// other user plus the most recent message exchanged with them.
type Conversation struct {
	PartnerID    uint64      // other participant
	PartnerName  string      // users.name of the partner
	PartnerEmail string      // users.email of the partner
	LastMessage  ChatMessage // most recent message in either direction
}
