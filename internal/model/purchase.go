package model

import "time"

// PurchaseStatus enumerates the lifecycle of a purchase. Values are stored
// verbatim in the purchases.status column.
type PurchaseStatus string

const (
	PurchaseAwaitingContract   PurchaseStatus = "AWAITING_CONTRACT"
	PurchaseAwaitingSignatures PurchaseStatus = "AWAITING_SIGNATURES"
	PurchaseAwaitingPayment    PurchaseStatus = "AWAITING_PAYMENT"
	PurchaseCompleted          PurchaseStatus = "COMPLETED"
	PurchaseCancelled          PurchaseStatus = "CANCELLED"
)

// Valid reports whether s is one of the known purchase statuses.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseAwaitingContract, PurchaseAwaitingSignatures,
		PurchaseAwaitingPayment, PurchaseCompleted, PurchaseCancelled:
		return true
	}
	return false
}

// Terminal reports whether the purchase can no longer change state.
func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseCompleted || s == PurchaseCancelled
}

// CanTransition reports whether a purchase may move from s to next.
// Signatures drive AWAITING_CONTRACT -> AWAITING_SIGNATURES ->
// AWAITING_PAYMENT, the payment webhook drives -> COMPLETED, and any
// non-terminal state may be cancelled.
func (s PurchaseStatus) CanTransition(next PurchaseStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == PurchaseCancelled {
		return true
	}
	switch s {
	case PurchaseAwaitingContract:
		return next == PurchaseAwaitingSignatures || next == PurchaseAwaitingPayment
	case PurchaseAwaitingSignatures:
		return next == PurchaseAwaitingPayment
	case PurchaseAwaitingPayment:
		return next == PurchaseCompleted
	}
	return false
}

// Purchase tracks one client's attempt to buy one unit through to
// completion or cancellation. A unit has at most one open purchase; the
// reservation flow enforces this with a row lock on the unit.
type Purchase struct {
	ID        uint64         // purchases.id
	ClientID  uint64         // purchases.client_id
	UnitID    uint64         // purchases.unit_id (unique among open purchases)
	Status    PurchaseStatus // purchases.status
	CreatedAt time.Time      // purchases.created_at
	UpdatedAt time.Time      // purchases.updated_at
}
