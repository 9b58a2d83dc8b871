package domain

import "errors"

// Validation and transition failures surfaced by the lease core. All are
// synchronous caller errors; none leave partial state behind.
var (
	ErrInvalidTerms      = errors.New("invalid lease terms")
	ErrMissingParty      = errors.New("missing or invalid party")
	ErrIllegalTransition = errors.New("illegal lease transition")
	ErrNotFound          = errors.New("lease not found")
	ErrInvalidAmount     = errors.New("invalid payment amount")
	ErrLeaseNotActive    = errors.New("lease not active")
)
