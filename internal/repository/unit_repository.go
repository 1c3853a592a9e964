package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/imovelhub/unit-sales/internal/model"
)

// UnitRepo encapsulates database operations for units. Units are written
// only by the reservation and payment-reconciliation flows; everything else
// reads them.
type UnitRepo struct {
	db *sql.DB
}

// NewUnitRepo constructs a UnitRepo given a DB handle.
func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning multiple repositories.
func (r *UnitRepo) DB() *sql.DB { return r.db }

const unitColumns = `id, listing_id, number, floor, block, price_cents, status, created_at, updated_at`

func scanUnit(row *sql.Row) (*model.Unit, error) {
	var u model.Unit
	err := row.Scan(&u.ID, &u.ListingID, &u.Number, &u.Floor, &u.Block,
		&u.PriceCents, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a unit without locking. Used by the read-only catalog
// lookup; never use this inside the reservation flow.
func (r *UnitRepo) GetByID(ctx context.Context, id uint64) (*model.Unit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	return scanUnit(row)
}

// GetForUpdateTx fetches a unit with an exclusive row lock (SELECT ... FOR
// UPDATE). This is the single serialization point of the reservation flow:
// two concurrent StartPurchase calls on the same unit queue up here, and
// the loser observes the RESERVED status written by the winner.
func (r *UnitRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Unit, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ? FOR UPDATE`, id)
	return scanUnit(row)
}

// UpdateStatusTx sets the unit status inside the provided transaction.
// Callers fetch the row (locked) first, so existence is already settled;
// MySQL reports zero affected rows for value-identical updates, which makes
// RowsAffected useless as a not-found signal here.
func (r *UnitRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.UnitStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE units SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, status, id)
	return err
}

// BuilderUserIDForUnitTx resolves the user that owns the builder profile
// behind the unit's listing. Signature and payment endpoints use it for
// ownership checks on the builder side.
func (r *UnitRepo) BuilderUserIDForUnitTx(ctx context.Context, tx *sql.Tx, unitID uint64) (uint64, error) {
	const q = `SELECT bp.user_id
	           FROM units u
	           JOIN listings l ON l.id = u.listing_id
	           JOIN builder_profiles bp ON bp.id = l.builder_id
	           WHERE u.id = ?`
	var userID uint64
	err := tx.QueryRowContext(ctx, q, unitID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnitNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// BuilderUserIDForUnit is BuilderUserIDForUnitTx outside a transaction,
// for read-only authorization checks.
func (r *UnitRepo) BuilderUserIDForUnit(ctx context.Context, unitID uint64) (uint64, error) {
	const q = `SELECT bp.user_id
	           FROM units u
	           JOIN listings l ON l.id = u.listing_id
	           JOIN builder_profiles bp ON bp.id = l.builder_id
	           WHERE u.id = ?`
	var userID uint64
	err := r.db.QueryRowContext(ctx, q, unitID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnitNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}
