package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// The services declare the narrow slices of the repository layer they
// need, so unit tests can substitute in-memory fakes. The concrete
// repository types satisfy these without adapters.

// TxRunner runs a function inside one committed-or-rolled-back
// transaction. *repository.TxRunner is the production implementation.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// UnitStore is the unit access needed by the workflows.
type UnitStore interface {
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Unit, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.UnitStatus) error
	BuilderUserIDForUnitTx(ctx context.Context, tx *sql.Tx, unitID uint64) (uint64, error)
}

// PurchaseStore is the purchase access needed by the workflows.
type PurchaseStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Purchase, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PurchaseStatus) error
	OpenPurchaseExistsTx(ctx context.Context, tx *sql.Tx, unitID uint64) (bool, error)
}

// ContractStore is the contract access needed by the workflows.
type ContractStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, ct *model.Contract) error
	GetByPurchaseForUpdateTx(ctx context.Context, tx *sql.Tx, purchaseID uint64) (*model.Contract, error)
	FindByProviderRefForUpdateTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Contract, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, ct *model.Contract) error
}

// PaymentStore is the payment access needed by the payment flow.
type PaymentStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	SetGatewayTransactionIDTx(ctx context.Context, tx *sql.Tx, paymentID uint64, gatewayTxID string) error
	GetByGatewayTxIDForUpdateTx(ctx context.Context, tx *sql.Tx, gatewayTxID string) (*model.Payment, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PaymentStatus, paidAt *time.Time) error
}

// VisitStore is the visit access needed by the scheduling flow.
type VisitStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, v *model.Visit) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Visit, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.VisitStatus) error
}

// ListingStore resolves the listing metadata the scheduling flow needs.
type ListingStore interface {
	GetInfoTx(ctx context.Context, tx *sql.Tx, id uint64) (*repository.ListingInfo, error)
}

// UserStore is the user access needed by the signature flow.
type UserStore interface {
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error)
}

// Notifier records a user-visible event. Implementations must be
// best-effort: the workflow has already committed when Notify runs, so a
// notifier failure is logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, title, body, kind string, link *string)
}
