package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/repository"
)

// UnitHandler serves the read-only unit catalog lookup. The route runs
// under the Redis response cache; unit status changes tolerate the short
// cache TTL because every mutation re-checks status under a row lock.
type UnitHandler struct {
	Units *repository.UnitRepo
}

func NewUnitHandler(u *repository.UnitRepo) *UnitHandler {
	return &UnitHandler{Units: u}
}

// GetUnit returns one unit by id.
func (h *UnitHandler) GetUnit(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit id"})
	}

	u, err := h.Units.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrUnitNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":          u.ID,
		"listing_id":  u.ListingID,
		"number":      u.Number,
		"floor":       u.Floor,
		"block":       u.Block,
		"price_cents": u.PriceCents,
		"status":      u.Status,
	})
}
