package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/repository"
)

// NotificationHandler serves the per-user notification inbox.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's notifications, newest first, with the unread
// count. The optional limit query parameter caps the page size.
func (h *NotificationHandler) List(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	items, unread, err := h.Notifications.ListByUser(c.Request().Context(), currentUserID(c), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(items))
	for i := range items {
		n := &items[i]
		out = append(out, echo.Map{
			"id":         n.ID,
			"title":      n.Title,
			"body":       n.Body,
			"kind":       n.Kind,
			"link":       n.Link,
			"status":     n.Status,
			"created_at": n.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out, "unread": unread})
}

// ReadAll marks every notification of the caller as read.
func (h *NotificationHandler) ReadAll(c echo.Context) error {
	n, err := h.Notifications.MarkAllRead(c.Request().Context(), currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": n})
}
