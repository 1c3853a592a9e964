package realtime

import "encoding/json"

// Event names exchanged over the realtime channel.
const (
	EventIdentify            = "identify"
	EventJoinRoom            = "joinRoom"
	EventSendMessage         = "sendMessage"
	EventMessageReceived     = "messageReceived"
	EventNotificationCreated = "notificationCreated"
	EventError               = "error"
)

// Event is one frame on the wire, client- or server-originated.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an Event, marshalling data. Marshal errors are
// swallowed into an empty payload; every payload type in this package is
// marshal-safe.
func NewEvent(name string, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = nil
	}
	return Event{Name: name, Data: raw}
}

// JoinRoomPayload asks the server to join the conversation room shared
// with another user.
type JoinRoomPayload struct {
	PartnerID uint64 `json:"partner_id"`
}

// SendMessagePayload carries one outbound chat message.
type SendMessagePayload struct {
	RecipientID uint64  `json:"recipient_id"`
	Body        string  `json:"body"`
	ListingID   *uint64 `json:"listing_id,omitempty"`
	PurchaseID  *uint64 `json:"purchase_id,omitempty"`
}

// ErrorPayload reports a rejected client frame.
type ErrorPayload struct {
	Message string `json:"message"`
}
