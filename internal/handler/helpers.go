// Package handler implements the HTTP endpoints. Handlers bind and
// validate the request, call the service or repository layer, and map the
// service error taxonomy onto HTTP statuses.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/service"
)

// currentUserID returns the authenticated user id stored by the JWT
// middleware, or 0 when the request is unauthenticated.
func currentUserID(c echo.Context) uint64 {
	if id, ok := c.Get("user_id").(uint64); ok {
		return id
	}
	return 0
}

// currentRole returns the role claim stored by the JWT middleware.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// serviceError translates the service error taxonomy into a JSON error
// response. Unknown errors become 500 without leaking internals.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// contractJSON is the contract representation shared by the signature and
// purchase endpoints. Status is derived, never stored.
func contractJSON(ct *model.Contract) echo.Map {
	return echo.Map{
		"id":             ct.ID,
		"purchase_id":    ct.PurchaseID,
		"status":         ct.Status(),
		"client_signed":  ct.ClientSigned,
		"builder_signed": ct.BuilderSigned,
		"sent":           ct.Sent,
		"signed_at":      ct.SignedAt,
		"document_url":   ct.DocumentURL,
	}
}
