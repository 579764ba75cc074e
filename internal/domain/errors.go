package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Authentication flow.
	ErrInvalidChallenge  = errors.New("invalid or expired OTP")
	ErrInvalidCredential = errors.New("invalid PIN")

	// Money and plan validation.
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPlan       = errors.New("invalid plan term")
	ErrInsufficientFunds = errors.New("insufficient balance")

	// Collaborator failures. The operation aborts without committing the
	// associated state change; a persisted challenge surviving a failed
	// delivery is the one exception (see application/auth).
	ErrDeliveryFailure = errors.New("delivery failed")
	ErrStorageFailure  = errors.New("storage failed")
)
