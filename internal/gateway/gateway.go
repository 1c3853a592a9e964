// Package gateway defines the payment-gateway port consumed by the
// payment flow. The real provider lives outside this service; it accepts
// an amount and a method and answers with a provider-side transaction id
// plus method-specific payment instructions, then reports progress through
// the webhook endpoint.
package gateway

import (
	"context"

	"github.com/imovelhub/unit-sales/internal/model"
)

// ChargeRequest carries everything the provider needs to open a charge.
type ChargeRequest struct {
	PaymentID   uint64
	PurchaseID  uint64
	AmountCents uint64
	Method      model.PaymentMethod
	Description string
}

// PaymentInstructions are the method-specific payload the client needs to
// actually pay: a PIX QR code, a boleto line, or a card redirect URL.
// Unused fields stay empty for the other methods.
type PaymentInstructions struct {
	Method       model.PaymentMethod `json:"method"`
	PixQRCode    string              `json:"pix_qr_code,omitempty"`
	PixCopyPaste string              `json:"pix_copy_paste,omitempty"`
	BoletoURL    string              `json:"boleto_url,omitempty"`
	BoletoLine   string              `json:"boleto_line,omitempty"`
	CardRedirect string              `json:"card_redirect_url,omitempty"`
}

// Charge is the provider's answer to a charge request.
type Charge struct {
	TransactionID string
	Status        string
	Instructions  PaymentInstructions
}

// Gateway is the provider port. Implementations must be safe for
// concurrent use; a non-nil error means nothing was created on the
// provider side (or it cannot be confirmed) and the caller must roll back.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error)
}
