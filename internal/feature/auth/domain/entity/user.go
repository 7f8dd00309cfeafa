// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
type User struct {
	ID uint

	// Email is unique across all users.
	Email string

	// Password is the bcrypt hash, never the plaintext.
	Password string

	CreatedAt time.Time
	UpdatedAt time.Time
}
