package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/realtime"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// WSHandler owns the realtime channel: it upgrades the connection,
// registers presence and runs the per-connection event loop. The route is
// protected by JWTAuth (token query parameter), so the user id is already
// authenticated when Serve runs.
type WSHandler struct {
	Hub  *realtime.Hub
	Chat *repository.ChatRepo
}

func NewWSHandler(hub *realtime.Hub, chat *repository.ChatRepo) *WSHandler {
	return &WSHandler{Hub: hub, Chat: chat}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The channel carries no credentials beyond the already-validated JWT
	// and the API is served to browser clients on other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// messagePayload is the body of a messageReceived event.
type messagePayload struct {
	ID          uint64    `json:"id"`
	SenderID    uint64    `json:"sender_id"`
	RecipientID uint64    `json:"recipient_id"`
	Body        string    `json:"body"`
	ListingID   *uint64   `json:"listing_id,omitempty"`
	PurchaseID  *uint64   `json:"purchase_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Serve upgrades to a websocket and processes client frames until the
// connection drops.
func (h *WSHandler) Serve(c echo.Context) error {
	uid := currentUserID(c)

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	conn := realtime.NewWSConn(ws)
	reg := h.Hub.Registry()
	reg.Identify(uid, conn)
	defer func() {
		reg.Disconnect(uid, conn)
		h.Hub.Evict(conn)
		_ = conn.Close()
	}()

	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			return nil
		}
		switch ev.Name {
		case realtime.EventIdentify:
			// Identity comes from the JWT at upgrade time; the frame is
			// accepted for protocol compatibility and otherwise ignored.
		case realtime.EventJoinRoom:
			var p realtime.JoinRoomPayload
			if err := json.Unmarshal(ev.Data, &p); err != nil || p.PartnerID == 0 {
				h.sendError(conn, "joinRoom requires partner_id")
				continue
			}
			h.Hub.Join(realtime.RoomFor(uid, p.PartnerID), conn)
		case realtime.EventSendMessage:
			h.handleSendMessage(c, uid, conn, ev.Data)
		default:
			h.sendError(conn, "unknown event "+ev.Name)
		}
	}
}

// handleSendMessage persists the message and then broadcasts it to the
// conversation room. The row is durable before any push, so a recipient
// who is offline or not in the room recovers it from the history endpoint.
func (h *WSHandler) handleSendMessage(c echo.Context, senderID uint64, conn *realtime.WSConn, data json.RawMessage) {
	var p realtime.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(conn, "invalid sendMessage payload")
		return
	}
	p.Body = strings.TrimSpace(p.Body)
	if p.RecipientID == 0 || p.RecipientID == senderID || p.Body == "" {
		h.sendError(conn, "sendMessage requires recipient_id and body")
		return
	}

	msg := model.ChatMessage{
		SenderID:       senderID,
		RecipientID:    p.RecipientID,
		Body:           p.Body,
		ListingID:      p.ListingID,
		PurchaseID:     p.PurchaseID,
		DeliveryStatus: "SENT",
	}
	if err := h.Chat.Create(c.Request().Context(), &msg); err != nil {
		log.Printf("ws: store message from %d to %d failed: %v", senderID, p.RecipientID, err)
		h.sendError(conn, "message not stored")
		return
	}

	room := realtime.RoomFor(senderID, p.RecipientID)
	// The sender hears their own message back as the delivery confirmation.
	h.Hub.Join(room, conn)
	h.Hub.Publish(room, realtime.NewEvent(realtime.EventMessageReceived, messagePayload{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
		ListingID:   msg.ListingID,
		PurchaseID:  msg.PurchaseID,
		CreatedAt:   msg.CreatedAt,
	}))
}

func (h *WSHandler) sendError(conn *realtime.WSConn, msg string) {
	if err := conn.Send(realtime.NewEvent(realtime.EventError, realtime.ErrorPayload{Message: msg})); err != nil {
		log.Printf("ws: error frame send failed: %v", err)
	}
}
