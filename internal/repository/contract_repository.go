package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/imovelhub/unit-sales/internal/model"
)

// ContractRepo provides data access to the contracts table. The stored
// columns are the two signature flags, the sent flag and the terminal
// marker; the derived status never hits the database.
type ContractRepo struct {
	db *sql.DB
}

// NewContractRepo returns a new ContractRepo bound to the provided database.
func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{db: db} }

const contractColumns = `id, purchase_id, client_signed, builder_signed, sent,
	COALESCE(terminal_status, ''), signed_at, document_url, external_sign_id,
	created_at, updated_at`

func scanContract(row *sql.Row) (*model.Contract, error) {
	var ct model.Contract
	err := row.Scan(&ct.ID, &ct.PurchaseID, &ct.ClientSigned, &ct.BuilderSigned, &ct.Sent,
		&ct.Terminal, &ct.SignedAt, &ct.DocumentURL, &ct.ExternalSignID,
		&ct.CreatedAt, &ct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// CreateTx inserts a fresh unsigned contract for a purchase inside the
// provided transaction and populates its ID.
func (r *ContractRepo) CreateTx(ctx context.Context, tx *sql.Tx, ct *model.Contract) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO contracts (purchase_id) VALUES (?)`, ct.PurchaseID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ct.ID = uint64(id)
	return nil
}

// GetByPurchase fetches the contract of a purchase without locking.
func (r *ContractRepo) GetByPurchase(ctx context.Context, purchaseID uint64) (*model.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE purchase_id = ?`, purchaseID)
	return scanContract(row)
}

// GetByPurchaseForUpdateTx fetches the contract of a purchase with an
// exclusive row lock. Every signature transition goes through this lock so
// that two concurrent signers cannot both read stale flags.
func (r *ContractRepo) GetByPurchaseForUpdateTx(ctx context.Context, tx *sql.Tx, purchaseID uint64) (*model.Contract, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE purchase_id = ? FOR UPDATE`, purchaseID)
	return scanContract(row)
}

// FindByProviderRefForUpdateTx resolves the contract referenced by an
// e-signature provider event, with a row lock. It matches the provider's
// external id first and falls back to the internal numeric id for
// providers configured without an id mapping.
func (r *ContractRepo) FindByProviderRefForUpdateTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Contract, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE external_sign_id = ? FOR UPDATE`, ref)
	ct, err := scanContract(row)
	if err == nil || !errors.Is(err, ErrContractNotFound) {
		return ct, err
	}
	id, convErr := strconv.ParseUint(ref, 10, 64)
	if convErr != nil {
		return nil, ErrContractNotFound
	}
	row = tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = ? FOR UPDATE`, id)
	return scanContract(row)
}

// UpdateTx writes back the mutable contract fields inside the provided
// transaction.
func (r *ContractRepo) UpdateTx(ctx context.Context, tx *sql.Tx, ct *model.Contract) error {
	var terminal interface{}
	if ct.Terminal != "" {
		terminal = string(ct.Terminal)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE contracts
		 SET client_signed = ?, builder_signed = ?, sent = ?, terminal_status = ?,
		     signed_at = ?, document_url = ?, external_sign_id = ?,
		     updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		ct.ClientSigned, ct.BuilderSigned, ct.Sent, terminal,
		ct.SignedAt, ct.DocumentURL, ct.ExternalSignID, ct.ID)
	return err
}
