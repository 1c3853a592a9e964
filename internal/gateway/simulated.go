package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/imovelhub/unit-sales/internal/model"
)

// Simulated is an in-process Gateway used in development and tests. It
// fabricates transaction ids and method-specific instructions shaped like
// the real provider's responses.
type Simulated struct {
	// BaseURL prefixes the fabricated boleto and card redirect links.
	BaseURL string
}

// NewSimulated returns a simulated gateway. An empty baseURL falls back
// to a localhost placeholder.
func NewSimulated(baseURL string) *Simulated {
	if baseURL == "" {
		baseURL = "http://localhost:8080/sim-gateway"
	}
	return &Simulated{BaseURL: baseURL}
}

// CreateCharge fabricates a pending charge. The transaction id embeds the
// payment id for readability plus a UUID for uniqueness across retries.
func (g *Simulated) CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error) {
	if req.AmountCents == 0 {
		return Charge{}, fmt.Errorf("simulated gateway: zero amount")
	}
	txID := fmt.Sprintf("gw_sim_%d_%s", req.PaymentID, uuid.NewString())
	instr := PaymentInstructions{Method: req.Method}
	switch req.Method {
	case model.MethodPix:
		instr.PixQRCode = "data:image/png;base64,c2ltdWxhdGVkLXFy"
		instr.PixCopyPaste = fmt.Sprintf("00020126simulated-pix-%d", req.PaymentID)
	case model.MethodBoleto:
		instr.BoletoURL = fmt.Sprintf("%s/boleto/%d", g.BaseURL, req.PaymentID)
		instr.BoletoLine = "12345.67890 12345.678901 12345.678902 1 12345678901234"
	case model.MethodCreditCard:
		instr.CardRedirect = fmt.Sprintf("%s/card/%d", g.BaseURL, req.PaymentID)
	default:
		return Charge{}, fmt.Errorf("simulated gateway: unsupported method %q", req.Method)
	}
	return Charge{TransactionID: txID, Status: "pending", Instructions: instr}, nil
}
