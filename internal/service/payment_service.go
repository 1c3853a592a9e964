package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imovelhub/unit-sales/internal/gateway"
	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// PaymentService owns payment reconciliation: creating payment intents
// against the gateway and applying gateway webhook events. The webhook
// path is the only writer that can complete a purchase, so the "sale is
// final" transition lives in exactly one place.
type PaymentService struct {
	txr       TxRunner
	units     UnitStore
	purchases PurchaseStore
	payments  PaymentStore
	gw        gateway.Gateway
	notifier  Notifier
	now       func() time.Time
}

// NewPaymentService wires a PaymentService. notifier may be nil.
func NewPaymentService(txr TxRunner, units UnitStore, purchases PurchaseStore, payments PaymentStore, gw gateway.Gateway, notifier Notifier) *PaymentService {
	return &PaymentService{
		txr:       txr,
		units:     units,
		purchases: purchases,
		payments:  payments,
		gw:        gw,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateIntent creates a pending payment for the caller's purchase and
// opens a charge at the gateway. The gateway call happens inside the
// transaction: if the provider refuses or times out, the payment row is
// rolled back and no orphan without a gateway reference survives.
func (s *PaymentService) CreateIntent(ctx context.Context, purchaseID, clientID, amountCents uint64, method model.PaymentMethod) (*model.Payment, gateway.PaymentInstructions, error) {
	if amountCents == 0 {
		return nil, gateway.PaymentInstructions{}, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	if !method.Valid() {
		return nil, gateway.PaymentInstructions{}, fmt.Errorf("unsupported payment method %q: %w", method, ErrValidation)
	}
	var (
		payment model.Payment
		instr   gateway.PaymentInstructions
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		p, err := s.purchases.GetForUpdateTx(ctx, tx, purchaseID)
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if p.ClientID != clientID {
			return fmt.Errorf("purchase does not belong to caller: %w", ErrForbidden)
		}
		if p.Status.Terminal() {
			return fmt.Errorf("purchase is already %s: %w", p.Status, ErrConflict)
		}
		payment = model.Payment{
			PurchaseID:  purchaseID,
			AmountCents: amountCents,
			Method:      method,
			Status:      model.PaymentPending,
		}
		if err := s.payments.CreateTx(ctx, tx, &payment); err != nil {
			return err
		}
		charge, err := s.gw.CreateCharge(ctx, gateway.ChargeRequest{
			PaymentID:   payment.ID,
			PurchaseID:  purchaseID,
			AmountCents: amountCents,
			Method:      method,
		})
		if err != nil {
			return fmt.Errorf("gateway charge failed: %v: %w", err, ErrUpstream)
		}
		if err := s.payments.SetGatewayTransactionIDTx(ctx, tx, payment.ID, charge.TransactionID); err != nil {
			return err
		}
		payment.GatewayTransactionID = &charge.TransactionID
		instr = charge.Instructions
		return nil
	})
	if err != nil {
		return nil, gateway.PaymentInstructions{}, err
	}
	return &payment, instr, nil
}

// ApplyGatewayWebhook reconciles one gateway event with the local ledger.
// It is idempotent: replaying an event leaves the same final state. A
// transaction id with no local payment, or a gateway status outside the
// known vocabulary, resolves to ErrIgnored so the webhook endpoint can
// acknowledge it and stop the gateway from retrying.
//
// A transition to CONFIRMED completes the purchase and marks the unit
// SOLD in the same transaction as the payment update.
func (s *PaymentService) ApplyGatewayWebhook(ctx context.Context, gatewayTxID, gatewayStatus string, confirmedAt *time.Time) error {
	if gatewayTxID == "" || gatewayStatus == "" {
		return fmt.Errorf("transaction id and status are required: %w", ErrValidation)
	}
	mapped, known := model.PaymentStatusFromGateway(gatewayStatus)
	if !known {
		return fmt.Errorf("gateway status %q not in vocabulary: %w", gatewayStatus, ErrIgnored)
	}
	var (
		purchase      *model.Purchase
		completed     bool
		builderUserID uint64
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		pay, err := s.payments.GetByGatewayTxIDForUpdateTx(ctx, tx, gatewayTxID)
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return fmt.Errorf("transaction %q not known locally: %w", gatewayTxID, ErrIgnored)
		}
		if err != nil {
			return err
		}
		paidAt := pay.PaidAt
		if mapped == model.PaymentConfirmed && paidAt == nil {
			at := s.now()
			if confirmedAt != nil {
				at = confirmedAt.UTC()
			}
			paidAt = &at
		}
		if err := s.payments.UpdateStatusTx(ctx, tx, pay.ID, mapped, paidAt); err != nil {
			return err
		}
		p, err := s.purchases.GetForUpdateTx(ctx, tx, pay.PurchaseID)
		if err != nil {
			return err
		}
		purchase = p
		if mapped == model.PaymentConfirmed && p.Status != model.PurchaseCompleted {
			if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, model.PurchaseCompleted); err != nil {
				return err
			}
			if err := s.units.UpdateStatusTx(ctx, tx, p.UnitID, model.UnitSold); err != nil {
				return err
			}
			p.Status = model.PurchaseCompleted
			completed = true
		}
		if pay.Status != mapped && notifiable(mapped) {
			builderUserID, err = s.units.BuilderUserIDForUnitTx(ctx, tx, p.UnitID)
			return err
		}
		builderUserID = 0
		return nil
	})
	if err != nil {
		return err
	}
	if s.notifier == nil || builderUserID == 0 {
		return nil
	}
	link := purchaseLink(purchase.ID)
	switch {
	case completed:
		s.notifier.Notify(ctx, purchase.ClientID, "Pagamento confirmado",
			fmt.Sprintf("O pagamento da compra %d foi confirmado. Parabéns pela aquisição!", purchase.ID),
			"payment", &link)
		s.notifier.Notify(ctx, builderUserID, "Unidade vendida",
			fmt.Sprintf("O pagamento da compra %d foi confirmado e a unidade está vendida.", purchase.ID),
			"payment", &link)
	case mapped == model.PaymentFailed:
		s.notifier.Notify(ctx, purchase.ClientID, "Pagamento recusado",
			fmt.Sprintf("Um pagamento da compra %d falhou. Tente novamente por outro método.", purchase.ID),
			"payment", &link)
	case mapped == model.PaymentRefunded:
		s.notifier.Notify(ctx, purchase.ClientID, "Pagamento reembolsado",
			fmt.Sprintf("Um pagamento da compra %d foi reembolsado.", purchase.ID),
			"payment", &link)
	}
	return nil
}

// notifiable reports whether a payment status change is worth a
// notification. Processing churn is not.
func notifiable(status model.PaymentStatus) bool {
	return status == model.PaymentConfirmed || status == model.PaymentFailed || status == model.PaymentRefunded
}
