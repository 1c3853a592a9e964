package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// PurchaseService owns the reservation flow: starting a purchase against
// an available unit and cancelling an open one.
type PurchaseService struct {
	txr       TxRunner
	units     UnitStore
	purchases PurchaseStore
	contracts ContractStore
	notifier  Notifier
}

// NewPurchaseService wires a PurchaseService. notifier may be nil.
func NewPurchaseService(txr TxRunner, units UnitStore, purchases PurchaseStore, contracts ContractStore, notifier Notifier) *PurchaseService {
	return &PurchaseService{txr: txr, units: units, purchases: purchases, contracts: contracts, notifier: notifier}
}

// StartPurchase reserves a unit for a client. It locks the unit row (the
// single serialization point that prevents double-selling), verifies the
// unit is AVAILABLE, and creates the purchase and its unsigned contract in
// the same transaction that flips the unit to RESERVED. All three writes
// commit together or not at all.
func (s *PurchaseService) StartPurchase(ctx context.Context, clientID, unitID uint64) (*model.Purchase, *model.Contract, error) {
	if unitID == 0 {
		return nil, nil, fmt.Errorf("unit id is required: %w", ErrValidation)
	}
	var (
		purchase      model.Purchase
		contract      model.Contract
		builderUserID uint64
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		unit, err := s.units.GetForUpdateTx(ctx, tx, unitID)
		if errors.Is(err, repository.ErrUnitNotFound) {
			return fmt.Errorf("unit %d: %w", unitID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if unit.Status != model.UnitAvailable {
			return fmt.Errorf("unit is not available (status: %s): %w", unit.Status, ErrConflict)
		}
		// The status check above already implies no open purchase, but the
		// invariant is cheap to assert under the lock.
		open, err := s.purchases.OpenPurchaseExistsTx(ctx, tx, unitID)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("unit already has an open purchase: %w", ErrConflict)
		}
		purchase = model.Purchase{ClientID: clientID, UnitID: unitID, Status: model.PurchaseAwaitingContract}
		if err := s.purchases.CreateTx(ctx, tx, &purchase); err != nil {
			return err
		}
		if err := s.units.UpdateStatusTx(ctx, tx, unitID, model.UnitReserved); err != nil {
			return err
		}
		contract = model.Contract{PurchaseID: purchase.ID}
		if err := s.contracts.CreateTx(ctx, tx, &contract); err != nil {
			return err
		}
		builderUserID, err = s.units.BuilderUserIDForUnitTx(ctx, tx, unitID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if s.notifier != nil {
		link := purchaseLink(purchase.ID)
		s.notifier.Notify(ctx, builderUserID, "Nova reserva",
			fmt.Sprintf("A unidade %d foi reservada. Prepare o contrato da compra %d.", unitID, purchase.ID),
			"purchase", &link)
	}
	return &purchase, &contract, nil
}

// CancelPurchase cancels a non-terminal purchase owned by the caller. The
// contract is marked cancelled and the unit returns to AVAILABLE in the
// same transaction.
func (s *PurchaseService) CancelPurchase(ctx context.Context, callerID, purchaseID uint64) (*model.Purchase, error) {
	var (
		purchase      *model.Purchase
		builderUserID uint64
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		p, err := s.purchases.GetForUpdateTx(ctx, tx, purchaseID)
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if p.ClientID != callerID {
			return fmt.Errorf("purchase does not belong to caller: %w", ErrForbidden)
		}
		if p.Status.Terminal() {
			return fmt.Errorf("purchase already %s: %w", p.Status, ErrConflict)
		}
		ct, err := s.contracts.GetByPurchaseForUpdateTx(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		ct.Terminal = model.ContractCancelled
		if err := s.contracts.UpdateTx(ctx, tx, ct); err != nil {
			return err
		}
		if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, model.PurchaseCancelled); err != nil {
			return err
		}
		if err := s.units.UpdateStatusTx(ctx, tx, p.UnitID, model.UnitAvailable); err != nil {
			return err
		}
		p.Status = model.PurchaseCancelled
		purchase = p
		builderUserID, err = s.units.BuilderUserIDForUnitTx(ctx, tx, p.UnitID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		link := purchaseLink(purchase.ID)
		s.notifier.Notify(ctx, builderUserID, "Compra cancelada",
			fmt.Sprintf("A compra %d foi cancelada pelo cliente; a unidade voltou a ficar disponível.", purchase.ID),
			"purchase", &link)
	}
	return purchase, nil
}

func purchaseLink(purchaseID uint64) string {
	return fmt.Sprintf("/purchases/%d", purchaseID)
}
