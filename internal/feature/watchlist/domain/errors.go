// Package domain defines domain-level errors for the watchlist feature.
package domain

import "errors"

// Domain errors for watchlist operations.
var (
	// ErrDuplicateSymbol indicates the owner's watchlist already contains the symbol.
	// AddSymbol treats it as a successful no-op.
	ErrDuplicateSymbol = errors.New("symbol already in watchlist")

	// ErrCapacityExceeded indicates the watchlist is already at its configured size limit.
	ErrCapacityExceeded = errors.New("watchlist capacity exceeded")

	// ErrNotFound indicates the entry or alert does not exist for this owner.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIdentity indicates a request carrying neither a user id nor a session id.
	ErrInvalidIdentity = errors.New("invalid identity: no user or session")

	// ErrInvalidAlert indicates an alert with an unknown type or a non-positive target.
	ErrInvalidAlert = errors.New("invalid alert")
)
