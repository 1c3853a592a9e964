package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
	"github.com/imovelhub/unit-sales/internal/service"
)

// PaymentHandler serves the client-facing payment endpoints. Gateway
// webhook ingestion lives in WebhookHandler.
type PaymentHandler struct {
	Svc       *service.PaymentService
	Payments  *repository.PaymentRepo
	Purchases *repository.PurchaseRepo
	Units     *repository.UnitRepo
}

func NewPaymentHandler(svc *service.PaymentService, pay *repository.PaymentRepo, pur *repository.PurchaseRepo, u *repository.UnitRepo) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Payments: pay, Purchases: pur, Units: u}
}

type createIntentReq struct {
	AmountCents uint64 `json:"amount_cents"`
	Method      string `json:"method"` // pix | boleto | credit_card
}

// CreateIntent opens a payment attempt against the caller's purchase and
// returns the gateway's method-specific instructions.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	var req createIntentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	pay, instr, err := h.Svc.CreateIntent(c.Request().Context(), id, currentUserID(c), req.AmountCents, model.PaymentMethod(req.Method))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"payment": echo.Map{
			"id":                     pay.ID,
			"purchase_id":            pay.PurchaseID,
			"amount_cents":           pay.AmountCents,
			"method":                 pay.Method,
			"status":                 pay.Status,
			"gateway_transaction_id": pay.GatewayTransactionID,
		},
		"instructions": instr,
	})
}

// List returns the payment attempts of a purchase in creation order. The
// purchasing client and the owning builder may see them.
func (h *PaymentHandler) List(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	ctx := c.Request().Context()

	p, err := h.Purchases.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPurchaseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	uid := currentUserID(c)
	if p.ClientID != uid {
		owner, err := h.Units.BuilderUserIDForUnit(ctx, p.UnitID)
		if err != nil || owner != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	payments, err := h.Payments.ListByPurchase(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(payments))
	for i := range payments {
		pay := &payments[i]
		out = append(out, echo.Map{
			"id":                     pay.ID,
			"amount_cents":           pay.AmountCents,
			"method":                 pay.Method,
			"status":                 pay.Status,
			"gateway_transaction_id": pay.GatewayTransactionID,
			"paid_at":                pay.PaidAt,
			"created_at":             pay.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}
