package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
)

// VisitRepo provides data access to the visits table.
type VisitRepo struct {
	db *sql.DB
}

// NewVisitRepo returns a new VisitRepo bound to the provided database.
func NewVisitRepo(db *sql.DB) *VisitRepo { return &VisitRepo{db: db} }

const visitColumns = `id, client_id, listing_id, visit_at, stand_visit, unit_number, notes, status, created_at, updated_at`

func scanVisit(row *sql.Row) (*model.Visit, error) {
	var v model.Visit
	var notes sql.NullString
	err := row.Scan(&v.ID, &v.ClientID, &v.ListingID, &v.VisitAt, &v.StandVisit,
		&v.UnitNumber, &notes, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, err
	}
	v.Notes = notes.String
	return &v, nil
}

// CreateTx inserts a visit inside the provided transaction and populates
// its ID and timestamps.
func (r *VisitRepo) CreateTx(ctx context.Context, tx *sql.Tx, v *model.Visit) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO visits (client_id, listing_id, visit_at, stand_visit, unit_number, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ClientID, v.ListingID, v.VisitAt, v.StandVisit, v.UnitNumber, v.Notes, v.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	return nil
}

// GetForUpdateTx fetches a visit with an exclusive row lock so concurrent
// builder updates and client cancellations on the same visit serialize.
func (r *VisitRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Visit, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = ? FOR UPDATE`, id)
	return scanVisit(row)
}

// UpdateStatusTx sets the visit status inside the provided transaction.
func (r *VisitRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.VisitStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE visits SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, status, id)
	return err
}

// VisitDetail is the joined row the listing queries return: the visit plus
// the listing name and the booking client's identity.
type VisitDetail struct {
	Visit       model.Visit
	ListingName string
	ClientName  string
	ClientEmail string
}

const visitDetailQuery = `
	SELECT v.id, v.client_id, v.listing_id, v.visit_at, v.stand_visit, v.unit_number, v.notes, v.status,
	       v.created_at, v.updated_at,
	       l.name, cu.name, cu.email
	FROM visits v
	JOIN listings l ON l.id = v.listing_id
	JOIN users cu ON cu.id = v.client_id`

func scanVisitDetail(rows *sql.Rows) (*VisitDetail, error) {
	var d VisitDetail
	var notes sql.NullString
	err := rows.Scan(
		&d.Visit.ID, &d.Visit.ClientID, &d.Visit.ListingID, &d.Visit.VisitAt,
		&d.Visit.StandVisit, &d.Visit.UnitNumber, &notes, &d.Visit.Status,
		&d.Visit.CreatedAt, &d.Visit.UpdatedAt,
		&d.ListingName, &d.ClientName, &d.ClientEmail)
	if err != nil {
		return nil, err
	}
	d.Visit.Notes = notes.String
	return &d, nil
}

// ListByClient returns the client's visits, most recent visit date first.
// status filters to one lifecycle state when non-empty.
func (r *VisitRepo) ListByClient(ctx context.Context, clientID uint64, status model.VisitStatus, limit int) ([]VisitDetail, error) {
	q := visitDetailQuery + ` WHERE v.client_id = ?`
	args := []any{clientID}
	if status != "" {
		q += ` AND v.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY v.visit_at DESC LIMIT ?`
	args = append(args, limit)
	return r.queryDetails(ctx, q, args...)
}

// ListByBuilder returns the visits booked on listings owned by the builder
// profile of builderUserID, soonest visit first. status and listingID
// filter when non-zero.
func (r *VisitRepo) ListByBuilder(ctx context.Context, builderUserID uint64, status model.VisitStatus, listingID uint64, limit int) ([]VisitDetail, error) {
	q := visitDetailQuery + `
	JOIN builder_profiles bp ON bp.id = l.builder_id
	WHERE bp.user_id = ?`
	args := []any{builderUserID}
	if status != "" {
		q += ` AND v.status = ?`
		args = append(args, status)
	}
	if listingID != 0 {
		q += ` AND v.listing_id = ?`
		args = append(args, listingID)
	}
	q += ` ORDER BY v.visit_at ASC LIMIT ?`
	args = append(args, limit)
	return r.queryDetails(ctx, q, args...)
}

func (r *VisitRepo) queryDetails(ctx context.Context, q string, args ...any) ([]VisitDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]VisitDetail, 0)
	for rows.Next() {
		d, err := scanVisitDetail(rows)
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
