package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
	"github.com/imovelhub/unit-sales/internal/service"
)

// PurchaseHandler serves the purchase endpoints: starting, listing,
// inspecting and cancelling purchases.
type PurchaseHandler struct {
	Svc       *service.PurchaseService
	Purchases *repository.PurchaseRepo
	Units     *repository.UnitRepo
}

func NewPurchaseHandler(svc *service.PurchaseService, p *repository.PurchaseRepo, u *repository.UnitRepo) *PurchaseHandler {
	return &PurchaseHandler{Svc: svc, Purchases: p, Units: u}
}

type startPurchaseReq struct {
	UnitID uint64 `json:"unit_id"`
}

// Start reserves a unit for the authenticated client.
func (h *PurchaseHandler) Start(c echo.Context) error {
	var req startPurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	p, ct, err := h.Svc.StartPurchase(c.Request().Context(), currentUserID(c), req.UnitID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"purchase": echo.Map{
			"id":      p.ID,
			"unit_id": p.UnitID,
			"status":  p.Status,
		},
		"contract": contractJSON(ct),
	})
}

// ListMine lists the caller's purchases: a client sees the purchases they
// opened, a builder sees every purchase on their listings.
func (h *PurchaseHandler) ListMine(c echo.Context) error {
	uid := currentUserID(c)
	ctx := c.Request().Context()

	var (
		details []repository.PurchaseDetail
		err     error
	)
	if currentRole(c) == model.RoleBuilder {
		details, err = h.Purchases.ListByBuilder(ctx, uid)
	} else {
		details, err = h.Purchases.ListByClient(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]echo.Map, 0, len(details))
	for i := range details {
		out = append(out, purchaseDetailJSON(&details[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": out})
}

// Detail returns one purchase with its unit, listing and contract summary.
// Only the purchasing client and the builder owning the listing may see it.
func (h *PurchaseHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	ctx := c.Request().Context()

	d, err := h.Purchases.GetDetail(ctx, id)
	if err != nil {
		if err == repository.ErrPurchaseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	uid := currentUserID(c)
	if d.Purchase.ClientID != uid {
		owner, err := h.Units.BuilderUserIDForUnit(ctx, d.Purchase.UnitID)
		if err != nil || owner != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"purchase": purchaseDetailJSON(d)})
}

// Cancel cancels a non-terminal purchase owned by the caller.
func (h *PurchaseHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}

	p, err := h.Svc.CancelPurchase(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"purchase": echo.Map{"id": p.ID, "unit_id": p.UnitID, "status": p.Status},
	})
}

func purchaseDetailJSON(d *repository.PurchaseDetail) echo.Map {
	return echo.Map{
		"id":         d.Purchase.ID,
		"client_id":  d.Purchase.ClientID,
		"status":     d.Purchase.Status,
		"created_at": d.Purchase.CreatedAt,
		"unit": echo.Map{
			"id":          d.Purchase.UnitID,
			"number":      d.UnitNumber,
			"floor":       d.UnitFloor,
			"block":       d.UnitBlock,
			"price_cents": d.UnitPriceCents,
		},
		"listing": echo.Map{"id": d.ListingID, "name": d.ListingName},
		"client":  echo.Map{"name": d.ClientName, "email": d.ClientEmail},
		"contract": echo.Map{
			"status":         d.ContractStatus,
			"client_signed":  d.ClientSigned,
			"builder_signed": d.BuilderSigned,
		},
	}
}
