package model

import "time"

// VisitStatus enumerates the lifecycle of a scheduled listing visit.
// Values are stored verbatim in the visits.status column.
type VisitStatus string

const (
	VisitRequested VisitStatus = "REQUESTED"
	VisitConfirmed VisitStatus = "CONFIRMED"
	VisitCancelled VisitStatus = "CANCELLED"
	VisitCompleted VisitStatus = "COMPLETED"
)

// Valid reports whether s is one of the known visit statuses.
func (s VisitStatus) Valid() bool {
	switch s {
	case VisitRequested, VisitConfirmed, VisitCancelled, VisitCompleted:
		return true
	}
	return false
}

// Terminal reports whether the visit can no longer change state. A
// cancelled or completed visit stays that way; the client books a new
// one instead.
func (s VisitStatus) Terminal() bool {
	return s == VisitCancelled || s == VisitCompleted
}

// BuilderSettable reports whether the builder may move a visit to s.
// The builder answers a request by confirming, cancelling or marking it
// done; REQUESTED is only ever set at creation.
func (s VisitStatus) BuilderSettable() bool {
	switch s {
	case VisitConfirmed, VisitCancelled, VisitCompleted:
		return true
	}
	return false
}

// Visit is a client-booked appointment to see a listing, either at the
// sales stand or at a specific unit.
//
// Fields:
//  ID         – visits.id
//  ClientID   – user who booked the visit.
//  ListingID  – listing (empreendimento) to visit.
//  VisitAt    – scheduled date and time; must be in the future at booking.
//  StandVisit – true for a sales-stand visit, false for a unit visit.
//  UnitNumber – unit to see when StandVisit is false, nil otherwise.
//  Notes      – free-form remarks from the client.
//  Status     – REQUESTED, CONFIRMED, CANCELLED or COMPLETED.
type Visit struct {
	ID         uint64      // visits.id
	ClientID   uint64      // visits.client_id
	ListingID  uint64      // visits.listing_id
	VisitAt    time.Time   // visits.visit_at
	StandVisit bool        // visits.stand_visit
	UnitNumber *string     // visits.unit_number
	Notes      string      // visits.notes
	Status     VisitStatus // visits.status
	CreatedAt  time.Time   // visits.created_at
	UpdatedAt  time.Time   // visits.updated_at
}
