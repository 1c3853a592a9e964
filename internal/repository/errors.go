// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting SQL driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as reserving a unit that is no longer
// available. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUnitNotFound is returned when a unit row does not exist.
var ErrUnitNotFound = errors.New("unit not found")

// ErrListingNotFound is returned when a listing row does not exist.
var ErrListingNotFound = errors.New("listing not found")

// ErrVisitNotFound is returned when a visit row does not exist.
var ErrVisitNotFound = errors.New("visit not found")

// ErrPurchaseNotFound is returned when a purchase row does not exist.
var ErrPurchaseNotFound = errors.New("purchase not found")

// ErrContractNotFound is returned when a contract row does not exist.
var ErrContractNotFound = errors.New("contract not found")

// ErrPaymentNotFound is returned when a payment row does not exist.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrUserNotFound is returned when a user row does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrBuilderNotFound is returned when a user has no builder profile.
var ErrBuilderNotFound = errors.New("builder profile not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")
