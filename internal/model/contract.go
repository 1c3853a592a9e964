package model

import "time"

// ContractStatus enumerates the signature state of a contract. The
// non-terminal values are never stored: they are derived from the two
// signature flags so the status can not drift from them. Only the terminal
// flag (cancelled/invalid) is persisted alongside the flags.
type ContractStatus string

const (
	ContractPending                  ContractStatus = "PENDING"
	ContractAwaitingClientSignature  ContractStatus = "AWAITING_CLIENT_SIGNATURE"
	ContractAwaitingBuilderSignature ContractStatus = "AWAITING_BUILDER_SIGNATURE"
	ContractSigned                   ContractStatus = "SIGNED"
	ContractCancelled                ContractStatus = "CANCELLED"
	ContractInvalid                  ContractStatus = "INVALID"
)

// Contract is the dual-signature agreement tied 1:1 to a purchase. The two
// signature flags advance independently and in any order; Status() is a pure
// function of the flags plus the terminal marker.
//
// Sent is flipped when the builder publishes the contract document to the
// client (PENDING -> AWAITING_CLIENT_SIGNATURE); it has no effect once any
// party has signed.
type Contract struct {
	ID             uint64         // contracts.id
	PurchaseID     uint64         // contracts.purchase_id (unique)
	ClientSigned   bool           // contracts.client_signed
	BuilderSigned  bool           // contracts.builder_signed
	Sent           bool           // contracts.sent
	Terminal       ContractStatus // contracts.terminal_status: "", CANCELLED or INVALID
	SignedAt       *time.Time     // contracts.signed_at (last signature timestamp)
	DocumentURL    *string        // contracts.document_url (external document reference)
	ExternalSignID *string        // contracts.external_sign_id (e-signature provider id)
	CreatedAt      time.Time      // contracts.created_at
	UpdatedAt      time.Time      // contracts.updated_at
}

// Status derives the contract status from the signature flags and the
// terminal marker. A terminal marker always wins; otherwise SIGNED iff both
// flags are set, and the awaiting side is the one that has not signed yet.
func (ct *Contract) Status() ContractStatus {
	if ct.Terminal == ContractCancelled || ct.Terminal == ContractInvalid {
		return ct.Terminal
	}
	switch {
	case ct.ClientSigned && ct.BuilderSigned:
		return ContractSigned
	case ct.ClientSigned:
		return ContractAwaitingBuilderSignature
	case ct.BuilderSigned:
		return ContractAwaitingClientSignature
	case ct.Sent:
		return ContractAwaitingClientSignature
	}
	return ContractPending
}

// Signer identifies which party performs a signature.
type Signer string

const (
	SignerClient  Signer = "CLIENT"
	SignerBuilder Signer = "BUILDER"
)

// Sign applies one party's signature at time now and returns the purchase
// status that must accompany the new contract state. It returns false when
// the signature is not applicable: the party already signed or the contract
// reached a terminal state.
func (ct *Contract) Sign(party Signer, now time.Time) (PurchaseStatus, bool) {
	if ct.Terminal != "" {
		return "", false
	}
	switch party {
	case SignerClient:
		if ct.ClientSigned {
			return "", false
		}
		ct.ClientSigned = true
	case SignerBuilder:
		if ct.BuilderSigned {
			return "", false
		}
		ct.BuilderSigned = true
	default:
		return "", false
	}
	ct.SignedAt = &now
	if ct.ClientSigned && ct.BuilderSigned {
		return PurchaseAwaitingPayment, true
	}
	return PurchaseAwaitingSignatures, true
}
