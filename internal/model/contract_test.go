package model

import (
	"testing"
	"time"
)

func TestContractSignTransitionTable(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name          string
		clientSigned  bool
		builderSigned bool
		party         Signer
		wantContract  ContractStatus
		wantPurchase  PurchaseStatus
	}{
		{"client signs first", false, false, SignerClient, ContractAwaitingBuilderSignature, PurchaseAwaitingSignatures},
		{"builder signs first", false, false, SignerBuilder, ContractAwaitingClientSignature, PurchaseAwaitingSignatures},
		{"client completes", false, true, SignerClient, ContractSigned, PurchaseAwaitingPayment},
		{"builder completes", true, false, SignerBuilder, ContractSigned, PurchaseAwaitingPayment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ct := &Contract{ClientSigned: tc.clientSigned, BuilderSigned: tc.builderSigned}
			purchase, ok := ct.Sign(tc.party, now)
			if !ok {
				t.Fatalf("Sign returned false")
			}
			if got := ct.Status(); got != tc.wantContract {
				t.Errorf("contract status = %s, want %s", got, tc.wantContract)
			}
			if purchase != tc.wantPurchase {
				t.Errorf("purchase status = %s, want %s", purchase, tc.wantPurchase)
			}
			if ct.SignedAt == nil || !ct.SignedAt.Equal(now) {
				t.Errorf("SignedAt not stamped")
			}
		})
	}
}

func TestContractSignRejectsDoubleSignature(t *testing.T) {
	ct := &Contract{ClientSigned: true}
	if _, ok := ct.Sign(SignerClient, time.Now()); ok {
		t.Fatalf("expected second client signature to be rejected")
	}
	ct = &Contract{BuilderSigned: true}
	if _, ok := ct.Sign(SignerBuilder, time.Now()); ok {
		t.Fatalf("expected second builder signature to be rejected")
	}
}

func TestContractSignRejectsTerminal(t *testing.T) {
	ct := &Contract{Terminal: ContractInvalid}
	if _, ok := ct.Sign(SignerClient, time.Now()); ok {
		t.Fatalf("expected signature on invalid contract to be rejected")
	}
	if got := ct.Status(); got != ContractInvalid {
		t.Errorf("status = %s, want INVALID", got)
	}
}

// Status must equal SIGNED exactly when both flags are set, for every flag
// combination and regardless of how the flags were reached.
func TestContractStatusDerivation(t *testing.T) {
	for _, client := range []bool{false, true} {
		for _, builder := range []bool{false, true} {
			ct := &Contract{ClientSigned: client, BuilderSigned: builder}
			got := ct.Status()
			if (got == ContractSigned) != (client && builder) {
				t.Errorf("flags (%v,%v): status = %s", client, builder, got)
			}
		}
	}
	sent := &Contract{Sent: true}
	if got := sent.Status(); got != ContractAwaitingClientSignature {
		t.Errorf("sent contract status = %s, want AWAITING_CLIENT_SIGNATURE", got)
	}
}
