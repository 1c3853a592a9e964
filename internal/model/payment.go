package model

import "time"

// PaymentStatus enumerates the local state of one payment attempt. Values
// are stored verbatim in the payments.status column.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentConfirmed  PaymentStatus = "CONFIRMED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// PaymentStatusFromGateway maps the gateway's status vocabulary onto the
// local one. The boolean is false for vocabulary the gateway may add later;
// callers must leave the payment untouched in that case rather than guess.
func PaymentStatusFromGateway(gatewayStatus string) (PaymentStatus, bool) {
	switch gatewayStatus {
	case "paid", "approved", "completed":
		return PaymentConfirmed, true
	case "failed", "refused", "canceled":
		return PaymentFailed, true
	case "pending", "processing":
		return PaymentProcessing, true
	case "refunded":
		return PaymentRefunded, true
	}
	return "", false
}

// PaymentMethod is the client-chosen funds-transfer channel.
type PaymentMethod string

const (
	MethodPix        PaymentMethod = "pix"
	MethodBoleto     PaymentMethod = "boleto"
	MethodCreditCard PaymentMethod = "credit_card"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodPix, MethodBoleto, MethodCreditCard:
		return true
	}
	return false
}

// Payment is one funds-transfer attempt against a purchase. A purchase may
// accumulate several attempts; only a CONFIRMED payment completes it.
// GatewayTransactionID is nil until the gateway has acknowledged the intent
// and unique afterwards, which is what makes webhook replays idempotent.
type Payment struct {
	ID                   uint64        // payments.id
	PurchaseID           uint64        // payments.purchase_id
	AmountCents          uint64        // payments.amount_cents
	Method               PaymentMethod // payments.method
	Status               PaymentStatus // payments.status
	GatewayTransactionID *string       // payments.gateway_transaction_id (unique, nullable)
	PaidAt               *time.Time    // payments.paid_at (set on confirmation)
	CreatedAt            time.Time     // payments.created_at
	UpdatedAt            time.Time     // payments.updated_at
}
