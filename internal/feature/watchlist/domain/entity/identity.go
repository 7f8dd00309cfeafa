// Package entity defines the domain models for the watchlist feature.
package entity

import "fmt"

// Identity identifies the owner of a watchlist.
// A signed-in user is identified by UserID; an anonymous visitor by SessionID.
// When both are set the user identity wins.
type Identity struct {
	UserID    uint
	SessionID string
}

// IsUser reports whether the identity belongs to a signed-in user.
func (i Identity) IsUser() bool { return i.UserID != 0 }

// IsSession reports whether the identity is an anonymous session.
func (i Identity) IsSession() bool { return i.UserID == 0 && i.SessionID != "" }

// Valid reports whether the identity names any owner at all.
func (i Identity) Valid() bool { return i.IsUser() || i.IsSession() }

func (i Identity) String() string {
	if i.IsUser() {
		return fmt.Sprintf("user:%d", i.UserID)
	}
	return "session:" + i.SessionID
}
