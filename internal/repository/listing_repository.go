package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ListingRepo resolves listing metadata. Listings are seeded out of band;
// the application only reads them, so this repo is lookup-only.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a ListingRepo bound to the provided database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// ListingInfo is the slice of a listing the visit flow needs: its name for
// notification texts and the owning builder's user id for authorization.
type ListingInfo struct {
	ID            uint64
	Name          string
	BuilderUserID uint64
}

const listingInfoQuery = `SELECT l.id, l.name, bp.user_id
	FROM listings l
	JOIN builder_profiles bp ON bp.id = l.builder_id
	WHERE l.id = ?`

// GetInfo fetches a listing's name and owning builder user.
func (r *ListingRepo) GetInfo(ctx context.Context, id uint64) (*ListingInfo, error) {
	return scanListingInfo(r.db.QueryRowContext(ctx, listingInfoQuery, id))
}

// GetInfoTx is GetInfo inside the provided transaction.
func (r *ListingRepo) GetInfoTx(ctx context.Context, tx *sql.Tx, id uint64) (*ListingInfo, error) {
	return scanListingInfo(tx.QueryRowContext(ctx, listingInfoQuery, id))
}

func scanListingInfo(row *sql.Row) (*ListingInfo, error) {
	var info ListingInfo
	err := row.Scan(&info.ID, &info.Name, &info.BuilderUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}
