package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// SignatureService advances the contract as each party signs, in any
// order, and applies e-signature provider webhook events. Every
// transition locks the purchase row first and then the contract row, so
// concurrent signature and webhook calls on one purchase serialize on a
// stable lock order.
type SignatureService struct {
	txr       TxRunner
	units     UnitStore
	purchases PurchaseStore
	contracts ContractStore
	users     UserStore
	notifier  Notifier
	now       func() time.Time
}

// NewSignatureService wires a SignatureService. notifier may be nil.
func NewSignatureService(txr TxRunner, units UnitStore, purchases PurchaseStore, contracts ContractStore, users UserStore, notifier Notifier) *SignatureService {
	return &SignatureService{
		txr:       txr,
		units:     units,
		purchases: purchases,
		contracts: contracts,
		users:     users,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type signatureOutcome struct {
	contract      *model.Contract
	purchase      *model.Purchase
	builderUserID uint64
}

// SignAsClient applies the client's signature. The typed name is a
// lightweight identity-confirmation gate: it must match the caller's
// registered name case-insensitively.
func (s *SignatureService) SignAsClient(ctx context.Context, purchaseID, clientID uint64, typedName string) (*model.Contract, error) {
	if strings.TrimSpace(typedName) == "" {
		return nil, fmt.Errorf("typed name is required: %w", ErrValidation)
	}
	var out signatureOutcome
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		p, ct, err := s.lockPurchaseAndContract(ctx, tx, purchaseID)
		if err != nil {
			return err
		}
		if p.ClientID != clientID {
			return fmt.Errorf("purchase does not belong to caller: %w", ErrForbidden)
		}
		caller, err := s.users.GetByIDTx(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(typedName), strings.TrimSpace(caller.Name)) {
			return fmt.Errorf("typed name does not match the registered name: %w", ErrValidation)
		}
		if ct.ClientSigned {
			return fmt.Errorf("client already signed this contract: %w", ErrConflict)
		}
		return s.applySignature(ctx, tx, p, ct, model.SignerClient, s.now(), &out)
	})
	if err != nil {
		return nil, err
	}
	s.notifySigned(ctx, out, model.SignerClient)
	return out.contract, nil
}

// SignAsBuilder applies the builder's signature. The caller must own the
// builder profile behind the purchase's unit's listing.
func (s *SignatureService) SignAsBuilder(ctx context.Context, purchaseID, builderUserID uint64) (*model.Contract, error) {
	var out signatureOutcome
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		p, ct, err := s.lockPurchaseAndContract(ctx, tx, purchaseID)
		if err != nil {
			return err
		}
		owner, err := s.units.BuilderUserIDForUnitTx(ctx, tx, p.UnitID)
		if err != nil {
			return err
		}
		if owner != builderUserID {
			return fmt.Errorf("purchase is not on this builder's listing: %w", ErrForbidden)
		}
		if ct.BuilderSigned {
			return fmt.Errorf("builder already signed this contract: %w", ErrConflict)
		}
		return s.applySignature(ctx, tx, p, ct, model.SignerBuilder, s.now(), &out)
	})
	if err != nil {
		return nil, err
	}
	s.notifySigned(ctx, out, model.SignerBuilder)
	return out.contract, nil
}

// UpdateContract lets the owning builder attach or replace the external
// document reference and optionally publish ("send") the contract to the
// client, which moves a fresh purchase to AWAITING_SIGNATURES. Passing
// cancel releases the unit and terminates the purchase.
func (s *SignatureService) UpdateContract(ctx context.Context, purchaseID, builderUserID uint64, documentURL *string, send, cancel bool) (*model.Contract, error) {
	if documentURL == nil && !send && !cancel {
		return nil, fmt.Errorf("nothing to update: %w", ErrValidation)
	}
	if send && cancel {
		return nil, fmt.Errorf("send and cancel are mutually exclusive: %w", ErrValidation)
	}
	var out signatureOutcome
	var clientID uint64
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		p, ct, err := s.lockPurchaseAndContract(ctx, tx, purchaseID)
		if err != nil {
			return err
		}
		owner, err := s.units.BuilderUserIDForUnitTx(ctx, tx, p.UnitID)
		if err != nil {
			return err
		}
		if owner != builderUserID {
			return fmt.Errorf("purchase is not on this builder's listing: %w", ErrForbidden)
		}
		if ct.Terminal != "" || p.Status.Terminal() {
			return fmt.Errorf("contract is already %s: %w", ct.Status(), ErrConflict)
		}
		clientID = p.ClientID
		if documentURL != nil {
			ct.DocumentURL = documentURL
		}
		if send && !ct.Sent {
			ct.Sent = true
			if p.Status == model.PurchaseAwaitingContract {
				if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, model.PurchaseAwaitingSignatures); err != nil {
					return err
				}
				p.Status = model.PurchaseAwaitingSignatures
			}
		}
		if cancel {
			ct.Terminal = model.ContractCancelled
			if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, model.PurchaseCancelled); err != nil {
				return err
			}
			p.Status = model.PurchaseCancelled
			if err := s.units.UpdateStatusTx(ctx, tx, p.UnitID, model.UnitAvailable); err != nil {
				return err
			}
		}
		if err := s.contracts.UpdateTx(ctx, tx, ct); err != nil {
			return err
		}
		out = signatureOutcome{contract: ct, purchase: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		link := purchaseLink(purchaseID)
		switch {
		case cancel:
			s.notifier.Notify(ctx, clientID, "Contrato cancelado",
				fmt.Sprintf("O contrato da compra %d foi cancelado pela construtora.", purchaseID),
				"contract", &link)
		case send:
			s.notifier.Notify(ctx, clientID, "Contrato disponível",
				fmt.Sprintf("O contrato da compra %d está pronto para a sua assinatura.", purchaseID),
				"contract", &link)
		}
	}
	return out.contract, nil
}

// ProviderEvent is a normalized e-signature provider webhook payload.
type ProviderEvent struct {
	EventType   string
	ContractRef string
	SignerEmail string
	SignedAt    *time.Time
}

// Provider event types understood by ApplyProviderEvent.
const (
	EventSignerSigned      = "signer_signed"
	EventContractSigned    = "contract_signed"
	EventContractCompleted = "contract_completed"
	EventContractCanceled  = "contract_canceled"
	EventContractExpired   = "contract_expired"
)

// ApplyProviderEvent applies an e-signature provider event through the
// same transition table as the interactive signature endpoints. The
// signer is inferred from the event's email: the purchase's client email
// means the client signed, anything else is treated as the builder. A
// cancellation or expiry after reservation releases the unit. Events for
// unknown contracts, unknown event types, or signatures that are already
// recorded resolve to ErrIgnored so the provider is acknowledged without
// retries.
func (s *SignatureService) ApplyProviderEvent(ctx context.Context, ev ProviderEvent) error {
	if ev.ContractRef == "" {
		return fmt.Errorf("contract reference is required: %w", ErrValidation)
	}
	var out signatureOutcome
	var invalidated bool
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		ct, err := s.contracts.FindByProviderRefForUpdateTx(ctx, tx, ev.ContractRef)
		if errors.Is(err, repository.ErrContractNotFound) {
			return fmt.Errorf("contract %q not known locally: %w", ev.ContractRef, ErrIgnored)
		}
		if err != nil {
			return err
		}
		p, err := s.purchases.GetForUpdateTx(ctx, tx, ct.PurchaseID)
		if err != nil {
			return err
		}
		signedAt := s.now()
		if ev.SignedAt != nil {
			signedAt = ev.SignedAt.UTC()
		}
		switch ev.EventType {
		case EventSignerSigned, EventContractSigned:
			client, err := s.users.GetByIDTx(ctx, tx, p.ClientID)
			if err != nil {
				return err
			}
			party := model.SignerBuilder
			if strings.EqualFold(ev.SignerEmail, client.Email) {
				party = model.SignerClient
			}
			alreadySigned := (party == model.SignerClient && ct.ClientSigned) ||
				(party == model.SignerBuilder && ct.BuilderSigned)
			if alreadySigned {
				return fmt.Errorf("signature already recorded: %w", ErrIgnored)
			}
			return s.applySignature(ctx, tx, p, ct, party, signedAt, &out)
		case EventContractCompleted:
			if ct.ClientSigned && ct.BuilderSigned {
				return fmt.Errorf("contract already completed: %w", ErrIgnored)
			}
			if ct.Terminal != "" {
				return fmt.Errorf("contract is %s: %w", ct.Terminal, ErrConflict)
			}
			ct.ClientSigned = true
			ct.BuilderSigned = true
			ct.SignedAt = &signedAt
			if err := s.contracts.UpdateTx(ctx, tx, ct); err != nil {
				return err
			}
			if p.Status.CanTransition(model.PurchaseAwaitingPayment) {
				if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, model.PurchaseAwaitingPayment); err != nil {
					return err
				}
				p.Status = model.PurchaseAwaitingPayment
			}
			out = signatureOutcome{contract: ct, purchase: p}
			return s.fillBuilder(ctx, tx, p, &out)
		case EventContractCanceled, EventContractExpired:
			if ct.Terminal != "" {
				return fmt.Errorf("contract already %s: %w", ct.Terminal, ErrIgnored)
			}
			invalidated = true
			ct.Terminal = model.ContractInvalid
			if err := s.contracts.UpdateTx(ctx, tx, ct); err != nil {
				return err
			}
			if !p.Status.Terminal() {
				if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, model.PurchaseCancelled); err != nil {
					return err
				}
				p.Status = model.PurchaseCancelled
				// The unit was reserved when the purchase opened; give it back.
				if err := s.units.UpdateStatusTx(ctx, tx, p.UnitID, model.UnitAvailable); err != nil {
					return err
				}
			}
			out = signatureOutcome{contract: ct, purchase: p}
			return s.fillBuilder(ctx, tx, p, &out)
		}
		return fmt.Errorf("event type %q not handled: %w", ev.EventType, ErrIgnored)
	})
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}
	link := purchaseLink(out.purchase.ID)
	if invalidated {
		body := fmt.Sprintf("O contrato da compra %d foi invalidado pelo provedor de assinaturas.", out.purchase.ID)
		s.notifier.Notify(ctx, out.purchase.ClientID, "Contrato invalidado", body, "contract", &link)
		s.notifier.Notify(ctx, out.builderUserID, "Contrato invalidado", body, "contract", &link)
		return nil
	}
	if out.contract.Status() == model.ContractSigned {
		body := fmt.Sprintf("O contrato da compra %d foi assinado por ambas as partes.", out.purchase.ID)
		s.notifier.Notify(ctx, out.purchase.ClientID, "Contrato assinado", body, "contract", &link)
		s.notifier.Notify(ctx, out.builderUserID, "Contrato assinado", body, "contract", &link)
	}
	return nil
}

// lockPurchaseAndContract locks the purchase row and then its contract
// row. Keeping this order everywhere avoids lock cycles between the
// interactive and webhook paths.
func (s *SignatureService) lockPurchaseAndContract(ctx context.Context, tx *sql.Tx, purchaseID uint64) (*model.Purchase, *model.Contract, error) {
	p, err := s.purchases.GetForUpdateTx(ctx, tx, purchaseID)
	if errors.Is(err, repository.ErrPurchaseNotFound) {
		return nil, nil, fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	ct, err := s.contracts.GetByPurchaseForUpdateTx(ctx, tx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return p, ct, nil
}

// applySignature runs one row of the transition table and persists the
// resulting contract and purchase states.
func (s *SignatureService) applySignature(ctx context.Context, tx *sql.Tx, p *model.Purchase, ct *model.Contract, party model.Signer, at time.Time, out *signatureOutcome) error {
	nextPurchase, ok := ct.Sign(party, at)
	if !ok {
		return fmt.Errorf("contract is %s: %w", ct.Status(), ErrConflict)
	}
	if err := s.contracts.UpdateTx(ctx, tx, ct); err != nil {
		return err
	}
	if p.Status != nextPurchase && p.Status.CanTransition(nextPurchase) {
		if err := s.purchases.UpdateStatusTx(ctx, tx, p.ID, nextPurchase); err != nil {
			return err
		}
		p.Status = nextPurchase
	}
	out.contract = ct
	out.purchase = p
	return s.fillBuilder(ctx, tx, p, out)
}

func (s *SignatureService) fillBuilder(ctx context.Context, tx *sql.Tx, p *model.Purchase, out *signatureOutcome) error {
	owner, err := s.units.BuilderUserIDForUnitTx(ctx, tx, p.UnitID)
	if err != nil {
		return err
	}
	out.builderUserID = owner
	return nil
}

// notifySigned tells the counterparty that a signature landed, or both
// parties that the contract is fully signed.
func (s *SignatureService) notifySigned(ctx context.Context, out signatureOutcome, party model.Signer) {
	if s.notifier == nil || out.purchase == nil {
		return
	}
	link := purchaseLink(out.purchase.ID)
	if out.contract.Status() == model.ContractSigned {
		body := fmt.Sprintf("O contrato da compra %d foi assinado por ambas as partes. Prossiga com o pagamento.", out.purchase.ID)
		s.notifier.Notify(ctx, out.purchase.ClientID, "Contrato assinado", body, "contract", &link)
		s.notifier.Notify(ctx, out.builderUserID, "Contrato assinado", body, "contract", &link)
		return
	}
	if party == model.SignerClient {
		s.notifier.Notify(ctx, out.builderUserID, "Assinatura recebida",
			fmt.Sprintf("O cliente assinou o contrato da compra %d. Falta a assinatura da construtora.", out.purchase.ID),
			"contract", &link)
		return
	}
	s.notifier.Notify(ctx, out.purchase.ClientID, "Assinatura recebida",
		fmt.Sprintf("A construtora assinou o contrato da compra %d. Falta a sua assinatura.", out.purchase.ID),
		"contract", &link)
}
