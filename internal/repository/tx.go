package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner wraps a *sql.DB and runs a function inside one transaction,
// rolling back when the function returns an error and committing
// otherwise. Handlers and services use it so that every logical state
// transition is all-or-nothing.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner returns a TxRunner bound to the provided database.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{db: db} }

// RunTx begins a transaction, invokes fn and commits if fn returns nil.
// Any error from fn (or from commit) is returned after rollback. The
// rollback error is deliberately ignored: the driver rolls back broken
// connections on its own and fn's error is the one callers care about.
func (r *TxRunner) RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
