package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

// PaymentRepo provides data access to the payments table. The
// gateway_transaction_id column carries a unique index; it is the
// correlation key for webhook events.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, purchase_id, amount_cents, method, status,
	gateway_transaction_id, paid_at, created_at, updated_at`

func scanPayment(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.PurchaseID, &p.AmountCents, &p.Method, &p.Status,
		&p.GatewayTransactionID, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateTx inserts a pending payment inside the provided transaction and
// populates its ID. The gateway transaction id is written later in the
// same transaction, after the gateway call succeeds; if that call fails
// the whole transaction rolls back and no orphan row survives.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (purchase_id, amount_cents, method, status) VALUES (?, ?, ?, ?)`,
		p.PurchaseID, p.AmountCents, p.Method, p.Status)
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

// SetGatewayTransactionIDTx records the id returned by the gateway.
func (r *PaymentRepo) SetGatewayTransactionIDTx(ctx context.Context, tx *sql.Tx, paymentID uint64, gatewayTxID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET gateway_transaction_id = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		gatewayTxID, paymentID)
	return err
}

// GetByGatewayTxIDForUpdateTx resolves a webhook event to a payment, with
// an exclusive row lock so that duplicated or re-ordered webhook
// deliveries for the same transaction serialize.
func (r *PaymentRepo) GetByGatewayTxIDForUpdateTx(ctx context.Context, tx *sql.Tx, gatewayTxID string) (*model.Payment, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE gateway_transaction_id = ? FOR UPDATE`,
		gatewayTxID)
	return scanPayment(row)
}

// UpdateStatusTx sets the payment status and, for confirmations, the paid
// timestamp inside the provided transaction.
func (r *PaymentRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PaymentStatus, paidAt *time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ?, paid_at = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		status, paidAt, id)
	return err
}

// ListByPurchase returns every payment attempt of a purchase, oldest first.
func (r *PaymentRepo) ListByPurchase(ctx context.Context, purchaseID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE purchase_id = ? ORDER BY created_at ASC, id ASC`,
		purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.PurchaseID, &p.AmountCents, &p.Method, &p.Status,
			&p.GatewayTransactionID, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
