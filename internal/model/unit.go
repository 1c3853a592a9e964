package model

import "time"

// UnitStatus enumerates the sale state of a unit. Values are stored
// verbatim in the units.status column.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "AVAILABLE"
	UnitReserved  UnitStatus = "RESERVED"
	UnitSold      UnitStatus = "SOLD"
)

// Valid reports whether s is one of the known unit statuses.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitAvailable, UnitReserved, UnitSold:
		return true
	}
	return false
}

// CanTransition reports whether a unit may move from s to next. Only the
// reservation and payment-reconciliation flows mutate unit status, so the
// graph is small: AVAILABLE -> RESERVED (purchase started), RESERVED ->
// AVAILABLE (purchase cancelled or contract invalidated) and RESERVED ->
// SOLD (payment confirmed). SOLD is terminal.
func (s UnitStatus) CanTransition(next UnitStatus) bool {
	switch s {
	case UnitAvailable:
		return next == UnitReserved
	case UnitReserved:
		return next == UnitAvailable || next == UnitSold
	}
	return false
}

// Unit is a sellable real-estate item belonging to a listing.
//
// Fields:
//  ID         – units.id
//  ListingID  – listing (empreendimento) the unit belongs to.
//  Number     – unit number within the listing (e.g. "204").
//  Floor      – floor number.
//  Block      – block/tower label, empty when the listing has a single block.
//  PriceCents – asking price in cents.
//  Status     – AVAILABLE, RESERVED or SOLD.
type Unit struct {
	ID         uint64     // units.id
	ListingID  uint64     // units.listing_id
	Number     string     // units.number
	Floor      int        // units.floor
	Block      string     // units.block
	PriceCents uint64     // units.price_cents
	Status     UnitStatus // units.status
	CreatedAt  time.Time  // units.created_at
	UpdatedAt  time.Time  // units.updated_at
}
