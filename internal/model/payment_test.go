package model

import "testing"

func TestPaymentStatusFromGateway(t *testing.T) {
	cases := map[string]PaymentStatus{
		"paid":       PaymentConfirmed,
		"approved":   PaymentConfirmed,
		"completed":  PaymentConfirmed,
		"failed":     PaymentFailed,
		"refused":    PaymentFailed,
		"canceled":   PaymentFailed,
		"pending":    PaymentProcessing,
		"processing": PaymentProcessing,
		"refunded":   PaymentRefunded,
	}
	for gw, want := range cases {
		got, ok := PaymentStatusFromGateway(gw)
		if !ok || got != want {
			t.Errorf("PaymentStatusFromGateway(%q) = %s, %v; want %s", gw, got, ok, want)
		}
	}
	if _, ok := PaymentStatusFromGateway("chargeback"); ok {
		t.Errorf("unknown gateway status must not map")
	}
}

func TestUnitTransitions(t *testing.T) {
	if !UnitAvailable.CanTransition(UnitReserved) {
		t.Error("AVAILABLE -> RESERVED must be allowed")
	}
	if !UnitReserved.CanTransition(UnitSold) || !UnitReserved.CanTransition(UnitAvailable) {
		t.Error("RESERVED must allow SOLD and AVAILABLE")
	}
	if UnitSold.CanTransition(UnitAvailable) || UnitAvailable.CanTransition(UnitSold) {
		t.Error("illegal unit transition accepted")
	}
}

func TestPurchaseTransitions(t *testing.T) {
	for _, s := range []PurchaseStatus{PurchaseAwaitingContract, PurchaseAwaitingSignatures, PurchaseAwaitingPayment} {
		if !s.CanTransition(PurchaseCancelled) {
			t.Errorf("%s must allow cancellation", s)
		}
	}
	if !PurchaseAwaitingPayment.CanTransition(PurchaseCompleted) {
		t.Error("AWAITING_PAYMENT -> COMPLETED must be allowed")
	}
	if PurchaseCompleted.CanTransition(PurchaseCancelled) || PurchaseCancelled.CanTransition(PurchaseAwaitingPayment) {
		t.Error("terminal purchase transitioned")
	}
}
