// Package service implements the purchase, signature and payment
// workflows on top of the repository layer. Each operation is one
// transaction; services return taxonomy errors that handlers translate
// into HTTP statuses.
package service

import "errors"

// ErrValidation marks malformed or missing input, rejected before any
// transaction opens. Maps to HTTP 400.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks a referenced entity that does not exist. Maps to 404.
var ErrNotFound = errors.New("not found")

// ErrConflict marks a state precondition violation (unit not available,
// contract already signed, purchase already terminal). The transaction is
// rolled back. Maps to 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden marks a caller that does not own the resource. Maps to 403.
var ErrForbidden = errors.New("forbidden")

// ErrUpstream marks a failed gateway call. The local side effect is fully
// rolled back; surfaced as a generic retryable failure (502).
var ErrUpstream = errors.New("upstream failure")

// ErrIgnored marks a webhook event that is valid but refers to an unknown
// local record. It is a non-error outcome: webhook handlers acknowledge it
// with 200 so the external system does not retry forever.
var ErrIgnored = errors.New("event ignored")
