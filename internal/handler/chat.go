package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// ChatHandler serves the chat history endpoints. Live messaging happens on
// the websocket; these endpoints back the conversation list and history a
// client loads when opening a chat.
type ChatHandler struct {
	Chat *repository.ChatRepo
}

func NewChatHandler(ch *repository.ChatRepo) *ChatHandler {
	return &ChatHandler{Chat: ch}
}

// Conversations lists the caller's chat partners with the latest message
// of each conversation.
func (h *ChatHandler) Conversations(c echo.Context) error {
	convs, err := h.Chat.Conversations(c.Request().Context(), currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(convs))
	for i := range convs {
		cv := &convs[i]
		out = append(out, echo.Map{
			"partner": echo.Map{
				"id":    cv.PartnerID,
				"name":  cv.PartnerName,
				"email": cv.PartnerEmail,
			},
			"last_message": chatMessageJSON(&cv.LastMessage),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": out})
}

// History returns the messages exchanged with one partner, oldest first.
func (h *ChatHandler) History(c echo.Context) error {
	partnerID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil || partnerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	limit := 100
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	msgs, err := h.Chat.History(c.Request().Context(), currentUserID(c), partnerID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(msgs))
	for i := range msgs {
		out = append(out, chatMessageJSON(&msgs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

func chatMessageJSON(m *model.ChatMessage) echo.Map {
	return echo.Map{
		"id":           m.ID,
		"sender_id":    m.SenderID,
		"recipient_id": m.RecipientID,
		"body":         m.Body,
		"listing_id":   m.ListingID,
		"purchase_id":  m.PurchaseID,
		"created_at":   m.CreatedAt,
	}
}
