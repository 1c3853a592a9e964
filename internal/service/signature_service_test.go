package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

func newSignatureService(m *memStore, n Notifier) *SignatureService {
	svc := NewSignatureService(fakeTxRunner{}, m, purchaseStore{m}, contractStore{m}, userStore{m}, n)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSignAsClientThenBuilderCompletesContract(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	m.users[5] = &model.User{ID: 5, Name: "Ana Souza", Email: "ana@example.com"}
	n := &recordingNotifier{}
	svc := newSignatureService(m, n)

	ct, err := svc.SignAsClient(context.Background(), id, 5, "ana souza")
	if err != nil {
		t.Fatalf("SignAsClient: %v", err)
	}
	if got := ct.Status(); got != model.ContractAwaitingBuilderSignature {
		t.Fatalf("after client signature status = %s, want AWAITING_BUILDER_SIGNATURE", got)
	}
	if m.purchases[id].Status != model.PurchaseAwaitingSignatures {
		t.Errorf("purchase must stay AWAITING_SIGNATURES until both sign")
	}

	ct, err = svc.SignAsBuilder(context.Background(), id, 99)
	if err != nil {
		t.Fatalf("SignAsBuilder: %v", err)
	}
	if got := ct.Status(); got != model.ContractSigned {
		t.Fatalf("after both signatures status = %s, want SIGNED", got)
	}
	if m.purchases[id].Status != model.PurchaseAwaitingPayment {
		t.Errorf("purchase status = %s, want AWAITING_PAYMENT", m.purchases[id].Status)
	}
	// Full signature notifies both parties.
	if len(n.titlesFor(5)) == 0 || len(n.titlesFor(99)) == 0 {
		t.Errorf("both parties should be notified when the contract completes")
	}
}

func TestSignAsClientTypedNameGate(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	m.users[5] = &model.User{ID: 5, Name: "Ana Souza"}
	svc := newSignatureService(m, nil)

	if _, err := svc.SignAsClient(context.Background(), id, 5, "Maria Silva"); !errors.Is(err, ErrValidation) {
		t.Fatalf("wrong typed name: err = %v, want ErrValidation", err)
	}
	if _, err := svc.SignAsClient(context.Background(), id, 5, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank typed name: err = %v, want ErrValidation", err)
	}
	if m.contracts[id].ClientSigned {
		t.Errorf("failed gate must not record a signature")
	}
}

func TestSignOwnershipChecks(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	m.users[5] = &model.User{ID: 5, Name: "Ana Souza"}
	svc := newSignatureService(m, nil)

	if _, err := svc.SignAsClient(context.Background(), id, 6, "Ana Souza"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign client: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.SignAsBuilder(context.Background(), id, 98); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign builder: err = %v, want ErrForbidden", err)
	}
}

func TestSignTwiceConflicts(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	m.users[5] = &model.User{ID: 5, Name: "Ana Souza"}
	svc := newSignatureService(m, nil)

	if _, err := svc.SignAsClient(context.Background(), id, 5, "Ana Souza"); err != nil {
		t.Fatalf("first signature: %v", err)
	}
	if _, err := svc.SignAsClient(context.Background(), id, 5, "Ana Souza"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second signature: err = %v, want ErrConflict", err)
	}
}

func TestUpdateContractSendMovesPurchaseForward(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingContract)
	n := &recordingNotifier{}
	svc := newSignatureService(m, n)

	url := "https://docs.example.com/contract-1.pdf"
	ct, err := svc.UpdateContract(context.Background(), id, 99, &url, true, false)
	if err != nil {
		t.Fatalf("UpdateContract: %v", err)
	}
	if !ct.Sent || ct.DocumentURL == nil || *ct.DocumentURL != url {
		t.Errorf("contract should carry the document and be marked sent")
	}
	if m.purchases[id].Status != model.PurchaseAwaitingSignatures {
		t.Errorf("purchase status = %s, want AWAITING_SIGNATURES", m.purchases[id].Status)
	}
	if len(n.titlesFor(5)) != 1 {
		t.Errorf("client should be told the contract is ready")
	}
}

func TestUpdateContractCancelReleasesUnit(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	svc := newSignatureService(m, nil)

	ct, err := svc.UpdateContract(context.Background(), id, 99, nil, false, true)
	if err != nil {
		t.Fatalf("UpdateContract cancel: %v", err)
	}
	if ct.Status() != model.ContractCancelled {
		t.Errorf("contract status = %s, want CANCELLED", ct.Status())
	}
	if m.units[10].Status != model.UnitAvailable {
		t.Errorf("unit status = %s, want AVAILABLE", m.units[10].Status)
	}
	if m.purchases[id].Status != model.PurchaseCancelled {
		t.Errorf("purchase status = %s, want CANCELLED", m.purchases[id].Status)
	}
}

func TestUpdateContractValidation(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingContract)
	svc := newSignatureService(m, nil)

	if _, err := svc.UpdateContract(context.Background(), id, 99, nil, false, false); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty update: err = %v, want ErrValidation", err)
	}
	url := "https://docs.example.com/x.pdf"
	if _, err := svc.UpdateContract(context.Background(), id, 99, &url, true, true); !errors.Is(err, ErrValidation) {
		t.Fatalf("send+cancel: err = %v, want ErrValidation", err)
	}
}

func TestApplyProviderEventSignerSigned(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	m.users[5] = &model.User{ID: 5, Name: "Ana Souza", Email: "ana@example.com"}
	ref := "zs-abc-123"
	m.contracts[id].ExternalSignID = &ref
	svc := newSignatureService(m, nil)

	err := svc.ApplyProviderEvent(context.Background(), ProviderEvent{
		EventType:   EventSignerSigned,
		ContractRef: ref,
		SignerEmail: "ANA@example.com",
	})
	if err != nil {
		t.Fatalf("ApplyProviderEvent: %v", err)
	}
	if !m.contracts[id].ClientSigned {
		t.Errorf("client email must map to the client signature")
	}
	if m.contracts[id].BuilderSigned {
		t.Errorf("builder must not be marked signed")
	}

	// Replay of the same event is acknowledged but ignored.
	err = svc.ApplyProviderEvent(context.Background(), ProviderEvent{
		EventType:   EventSignerSigned,
		ContractRef: ref,
		SignerEmail: "ana@example.com",
	})
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("replay: err = %v, want ErrIgnored", err)
	}
}

func TestApplyProviderEventCompletedAdvancesPurchase(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	m.users[5] = &model.User{ID: 5, Email: "ana@example.com"}
	ref := "zs-abc-456"
	m.contracts[id].ExternalSignID = &ref
	svc := newSignatureService(m, nil)

	err := svc.ApplyProviderEvent(context.Background(), ProviderEvent{
		EventType:   EventContractCompleted,
		ContractRef: ref,
	})
	if err != nil {
		t.Fatalf("ApplyProviderEvent: %v", err)
	}
	if got := m.contracts[id].Status(); got != model.ContractSigned {
		t.Errorf("contract status = %s, want SIGNED", got)
	}
	if m.purchases[id].Status != model.PurchaseAwaitingPayment {
		t.Errorf("purchase status = %s, want AWAITING_PAYMENT", m.purchases[id].Status)
	}
}

func TestApplyProviderEventCancellationReleasesUnit(t *testing.T) {
	m := newMemStore()
	id := seedPurchase(m, 5, 10, 99, model.PurchaseAwaitingSignatures)
	ref := "zs-abc-789"
	m.contracts[id].ExternalSignID = &ref
	n := &recordingNotifier{}
	svc := newSignatureService(m, n)

	err := svc.ApplyProviderEvent(context.Background(), ProviderEvent{
		EventType:   EventContractExpired,
		ContractRef: ref,
	})
	if err != nil {
		t.Fatalf("ApplyProviderEvent: %v", err)
	}
	if got := m.contracts[id].Status(); got != model.ContractInvalid {
		t.Errorf("contract status = %s, want INVALID", got)
	}
	if m.units[10].Status != model.UnitAvailable {
		t.Errorf("unit status = %s, want AVAILABLE", m.units[10].Status)
	}
	if len(n.titlesFor(5)) == 0 || len(n.titlesFor(99)) == 0 {
		t.Errorf("both parties should hear about the invalidation")
	}
}

func TestApplyProviderEventUnknownContractIgnored(t *testing.T) {
	m := newMemStore()
	svc := newSignatureService(m, nil)

	err := svc.ApplyProviderEvent(context.Background(), ProviderEvent{
		EventType:   EventSignerSigned,
		ContractRef: "never-seen",
	})
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("err = %v, want ErrIgnored", err)
	}
}
