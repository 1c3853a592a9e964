package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/service"
)

// paymentReconciler is the slice of PaymentService the webhook needs.
type paymentReconciler interface {
	ApplyGatewayWebhook(ctx context.Context, gatewayTxID, gatewayStatus string, confirmedAt *time.Time) error
}

// signatureApplier is the slice of SignatureService the webhook needs.
type signatureApplier interface {
	ApplyProviderEvent(ctx context.Context, ev service.ProviderEvent) error
}

// WebhookHandler ingests callbacks from the payment gateway and the
// e-signature provider. Both endpoints are unauthenticated and rate
// limited; they answer 400 only for structurally incomplete bodies and 200
// for everything else, including events about records we do not know, so
// the external systems stop retrying.
type WebhookHandler struct {
	Payments   paymentReconciler
	Signatures signatureApplier
}

func NewWebhookHandler(p paymentReconciler, s signatureApplier) *WebhookHandler {
	return &WebhookHandler{Payments: p, Signatures: s}
}

// paymentWebhookReq mirrors the gateway's callback body verbatim.
type paymentWebhookReq struct {
	TransactionID   string  `json:"transactionId"`
	NovoStatus      string  `json:"novoStatus"`
	ValorPago       float64 `json:"valorPago"`
	DataConfirmacao string  `json:"dataConfirmacao"`
}

// Payment applies one gateway status callback.
func (h *WebhookHandler) Payment(c echo.Context) error {
	var req paymentWebhookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.TransactionID) == "" || strings.TrimSpace(req.NovoStatus) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transactionId and novoStatus are required"})
	}

	var confirmedAt *time.Time
	if req.DataConfirmacao != "" {
		if t, err := time.Parse(time.RFC3339, req.DataConfirmacao); err == nil {
			confirmedAt = &t
		}
	}

	err := h.Payments.ApplyGatewayWebhook(c.Request().Context(), req.TransactionID, req.NovoStatus, confirmedAt)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	case errors.Is(err, service.ErrIgnored):
		log.Printf("payment-webhook: ignoring event for tx %s: %v", req.TransactionID, err)
		return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": true})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": true})
	}
	log.Printf("payment-webhook: tx %s failed: %v", req.TransactionID, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// signatureWebhookReq mirrors the e-signature provider's callback body.
// The contract id arrives as a string or a number depending on provider
// version, so it is decoded loosely.
type signatureWebhookReq struct {
	EventType   string `json:"eventType"`
	ContractID  any    `json:"contractId"`
	SignerEmail string `json:"signerEmail"`
	SignedAt    string `json:"signedAt"`
	Status      string `json:"status"`
}

// Signature applies one e-signature provider callback.
func (h *WebhookHandler) Signature(c echo.Context) error {
	var req signatureWebhookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ref := contractRef(req.ContractID)
	if strings.TrimSpace(req.EventType) == "" || ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventType and contractId are required"})
	}

	ev := service.ProviderEvent{
		EventType:   req.EventType,
		ContractRef: ref,
		SignerEmail: strings.TrimSpace(req.SignerEmail),
	}
	if req.SignedAt != "" {
		if t, err := time.Parse(time.RFC3339, req.SignedAt); err == nil {
			ev.SignedAt = &t
		}
	}

	err := h.Signatures.ApplyProviderEvent(c.Request().Context(), ev)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	case errors.Is(err, service.ErrIgnored):
		log.Printf("signature-webhook: ignoring %s for contract %s: %v", req.EventType, ref, err)
		return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": true})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": true})
	}
	log.Printf("signature-webhook: %s for contract %s failed: %v", req.EventType, ref, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// contractRef normalizes the loosely typed contractId field.
func contractRef(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t <= 0 {
			return ""
		}
		return fmt.Sprintf("%.0f", t)
	}
	return ""
}
