package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

func newPaymentService(m *memStore, gw fakeGateway, n Notifier) *PaymentService {
	svc := NewPaymentService(fakeTxRunner{}, m, purchaseStore{m}, paymentStore{m}, gw, n)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func seedIntent(m *memStore, purchaseID uint64, txID string) uint64 {
	m.nextPaymentID++
	id := m.nextPaymentID
	m.payments[id] = &model.Payment{
		ID:                   id,
		PurchaseID:           purchaseID,
		AmountCents:          50_000_000,
		Method:               model.MethodPix,
		Status:               model.PaymentPending,
		GatewayTransactionID: &txID,
	}
	return id
}

func TestCreateIntentOpensCharge(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	svc := newPaymentService(m, fakeGateway{txID: "gw_1"}, nil)

	pay, _, err := svc.CreateIntent(context.Background(), id, 5, 50_000_000, model.MethodPix)
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if pay.Status != model.PaymentPending {
		t.Errorf("payment status = %s, want PENDING", pay.Status)
	}
	if pay.GatewayTransactionID == nil || *pay.GatewayTransactionID != "gw_1" {
		t.Errorf("payment must carry the gateway transaction id")
	}
}

func TestCreateIntentValidatesInput(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	svc := newPaymentService(m, fakeGateway{txID: "gw_1"}, nil)
	ctx := context.Background()

	if _, _, err := svc.CreateIntent(ctx, id, 5, 0, model.MethodPix); !errors.Is(err, ErrValidation) {
		t.Errorf("zero amount: err = %v, want ErrValidation", err)
	}
	if _, _, err := svc.CreateIntent(ctx, id, 5, 100, "cheque"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown method: err = %v, want ErrValidation", err)
	}
	if _, _, err := svc.CreateIntent(ctx, id, 6, 100, model.MethodPix); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign caller: err = %v, want ErrForbidden", err)
	}
}

func TestCreateIntentGatewayFailureSurfacesUpstream(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	svc := newPaymentService(m, fakeGateway{fail: true}, nil)

	_, _, err := svc.CreateIntent(context.Background(), id, 5, 100, model.MethodPix)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestCreateIntentRejectsTerminalPurchase(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseCompleted)
	svc := newPaymentService(m, fakeGateway{txID: "gw_1"}, nil)

	_, _, err := svc.CreateIntent(context.Background(), id, 5, 100, model.MethodPix)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestApplyGatewayWebhookConfirmCompletesPurchase(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	payID := seedIntent(m, id, "gw_1")
	n := &recordingNotifier{}
	svc := newPaymentService(m, fakeGateway{}, n)

	if err := svc.ApplyGatewayWebhook(context.Background(), "gw_1", "paid", nil); err != nil {
		t.Fatalf("ApplyGatewayWebhook: %v", err)
	}
	if m.payments[payID].Status != model.PaymentConfirmed {
		t.Errorf("payment status = %s, want CONFIRMED", m.payments[payID].Status)
	}
	if m.payments[payID].PaidAt == nil {
		t.Errorf("confirmed payment must carry paid_at")
	}
	if m.purchases[id].Status != model.PurchaseCompleted {
		t.Errorf("purchase status = %s, want COMPLETED", m.purchases[id].Status)
	}
	if m.units[10].Status != model.UnitSold {
		t.Errorf("unit status = %s, want SOLD", m.units[10].Status)
	}
	if len(n.titlesFor(5)) != 1 || len(n.titlesFor(99)) != 1 {
		t.Errorf("confirmation should notify client and builder exactly once")
	}
}

func TestApplyGatewayWebhookIsIdempotent(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	seedIntent(m, id, "gw_1")
	n := &recordingNotifier{}
	svc := newPaymentService(m, fakeGateway{}, n)
	ctx := context.Background()

	if err := svc.ApplyGatewayWebhook(ctx, "gw_1", "paid", nil); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.ApplyGatewayWebhook(ctx, "gw_1", "paid", nil); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if m.purchases[id].Status != model.PurchaseCompleted {
		t.Errorf("replay must not change the final state")
	}
	if got := len(n.notices); got != 2 {
		t.Errorf("replay must not duplicate notifications, got %d total", got)
	}
}

func TestApplyGatewayWebhookUnknownTransactionIgnored(t *testing.T) {
	m := newMemStore()
	svc := newPaymentService(m, fakeGateway{}, nil)

	err := svc.ApplyGatewayWebhook(context.Background(), "gw_unknown", "paid", nil)
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("err = %v, want ErrIgnored", err)
	}
}

func TestApplyGatewayWebhookUnknownStatusIgnored(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	payID := seedIntent(m, id, "gw_1")
	svc := newPaymentService(m, fakeGateway{}, nil)

	err := svc.ApplyGatewayWebhook(context.Background(), "gw_1", "definitely_new_status", nil)
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("err = %v, want ErrIgnored", err)
	}
	if m.payments[payID].Status != model.PaymentPending {
		t.Errorf("unknown vocabulary must leave the payment untouched")
	}
}

func TestApplyGatewayWebhookFailureNotifiesClientOnly(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingPayment)
	payID := seedIntent(m, id, "gw_1")
	n := &recordingNotifier{}
	svc := newPaymentService(m, fakeGateway{}, n)

	if err := svc.ApplyGatewayWebhook(context.Background(), "gw_1", "refused", nil); err != nil {
		t.Fatalf("ApplyGatewayWebhook: %v", err)
	}
	if m.payments[payID].Status != model.PaymentFailed {
		t.Errorf("payment status = %s, want FAILED", m.payments[payID].Status)
	}
	if m.purchases[id].Status != model.PurchaseAwaitingPayment {
		t.Errorf("failed payment must not move the purchase")
	}
	if len(n.titlesFor(5)) != 1 || len(n.titlesFor(99)) != 0 {
		t.Errorf("failure should notify the client only")
	}
}
