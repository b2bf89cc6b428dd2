// Package serviceerr defines the error kinds surfaced by the service layer.
// Handlers translate them to HTTP statuses with errors.Is; services wrap them
// with %w to attach entity context without losing the kind.
package serviceerr

import "errors"

var (
	// ErrNotFound — a referenced product, location, session, user or report does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — a session is no longer in_progress.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientStock — a check-out or transfer exceeds the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateKey — a unique value (barcode, username) already exists.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidCredentials — username/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount — the account exists but is deactivated.
	ErrInactiveAccount = errors.New("account inactive")
	// ErrInvalidInput — a domain-level precondition failed (non-positive quantity, bad enum).
	ErrInvalidInput = errors.New("invalid input")
)
