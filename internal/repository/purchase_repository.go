package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

// PurchaseRepo provides data access to the purchases table.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo returns a new PurchaseRepo bound to the provided database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

const purchaseColumns = `id, client_id, unit_id, status, created_at, updated_at`

func scanPurchase(row *sql.Row) (*model.Purchase, error) {
	var p model.Purchase
	err := row.Scan(&p.ID, &p.ClientID, &p.UnitID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateTx inserts a purchase inside the provided transaction and
// populates its ID and timestamps.
func (r *PurchaseRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (client_id, unit_id, status) VALUES (?, ?, ?)`,
		p.ClientID, p.UnitID, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetByID fetches a purchase without locking.
func (r *PurchaseRepo) GetByID(ctx context.Context, id uint64) (*model.Purchase, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, id)
	return scanPurchase(row)
}

// GetForUpdateTx fetches a purchase with an exclusive row lock so that
// concurrent signature or webhook calls on the same purchase serialize.
func (r *PurchaseRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Purchase, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ? FOR UPDATE`, id)
	return scanPurchase(row)
}

// UpdateStatusTx sets the purchase status inside the provided transaction.
func (r *PurchaseRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PurchaseStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE purchases SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, status, id)
	return err
}

// OpenPurchaseExistsTx reports whether the unit already has a non-terminal
// purchase. The reservation flow calls it under the unit row lock as a
// belt-and-braces check for the one-open-purchase-per-unit invariant.
func (r *PurchaseRepo) OpenPurchaseExistsTx(ctx context.Context, tx *sql.Tx, unitID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM purchases WHERE unit_id = ? AND status NOT IN (?, ?)`
	var n int
	if err := tx.QueryRowContext(ctx, q, unitID, model.PurchaseCompleted, model.PurchaseCancelled).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurchaseDetail is the joined row returned by the listing queries: the
// purchase plus unit, listing and contract summaries the UI renders.
type PurchaseDetail struct {
	Purchase       model.Purchase
	UnitNumber     string
	UnitFloor      int
	UnitBlock      string
	UnitPriceCents uint64
	ListingID      uint64
	ListingName    string
	ClientName     string
	ClientEmail    string
	ContractStatus model.ContractStatus
	ClientSigned   bool
	BuilderSigned  bool
}

const purchaseDetailQuery = `
	SELECT p.id, p.client_id, p.unit_id, p.status, p.created_at, p.updated_at,
	       u.number, u.floor, u.block, u.price_cents,
	       l.id, l.name,
	       cu.name, cu.email,
	       c.client_signed, c.builder_signed, c.sent, c.terminal_status
	FROM purchases p
	JOIN units u ON u.id = p.unit_id
	JOIN listings l ON l.id = u.listing_id
	JOIN users cu ON cu.id = p.client_id
	JOIN contracts c ON c.purchase_id = p.id`

func scanPurchaseDetail(rows *sql.Rows) (*PurchaseDetail, error) {
	var d PurchaseDetail
	var terminal sql.NullString
	var sent bool
	err := rows.Scan(
		&d.Purchase.ID, &d.Purchase.ClientID, &d.Purchase.UnitID, &d.Purchase.Status,
		&d.Purchase.CreatedAt, &d.Purchase.UpdatedAt,
		&d.UnitNumber, &d.UnitFloor, &d.UnitBlock, &d.UnitPriceCents,
		&d.ListingID, &d.ListingName,
		&d.ClientName, &d.ClientEmail,
		&d.ClientSigned, &d.BuilderSigned, &sent, &terminal)
	if err != nil {
		return nil, err
	}
	ct := model.Contract{
		ClientSigned:  d.ClientSigned,
		BuilderSigned: d.BuilderSigned,
		Sent:          sent,
		Terminal:      model.ContractStatus(terminal.String),
	}
	d.ContractStatus = ct.Status()
	return &d, nil
}

// ListByClient returns the client's purchases, newest first.
func (r *PurchaseRepo) ListByClient(ctx context.Context, clientID uint64) ([]PurchaseDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		purchaseDetailQuery+` WHERE p.client_id = ? ORDER BY p.created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// ListByBuilder returns all purchases on units belonging to the builder
// profile owned by builderUserID, newest first.
func (r *PurchaseRepo) ListByBuilder(ctx context.Context, builderUserID uint64) ([]PurchaseDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		purchaseDetailQuery+`
		JOIN builder_profiles bp ON bp.id = l.builder_id
		WHERE bp.user_id = ? ORDER BY p.created_at DESC`, builderUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// GetDetail returns one purchase with its joined unit/listing/contract
// summary, regardless of owner. Callers perform the ownership check.
func (r *PurchaseRepo) GetDetail(ctx context.Context, id uint64) (*PurchaseDetail, error) {
	rows, err := r.db.QueryContext(ctx, purchaseDetailQuery+` WHERE p.id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrPurchaseNotFound
	}
	return scanPurchaseDetail(rows)
}

func collectDetails(rows *sql.Rows) ([]PurchaseDetail, error) {
	details := make([]PurchaseDetail, 0)
	for rows.Next() {
		d, err := scanPurchaseDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
