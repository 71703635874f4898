// Package session provides durable storage for the authenticated session.
//
// The backend issues an opaque bearer token together with the user's
// identity; both are meaningless without the other, so the store treats
// them as one unit: Save persists the pair, Clear removes the pair, and
// Load never returns a half-set session.
package session

import (
	"errors"

	"monevo/internal/core"
)

// Session is the persisted authentication state.
type Session struct {
	Token string
	User  *core.User
}

// Authenticated reports whether the session carries both a token and a
// confirmed identity.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// ErrIncomplete is returned by Save when only one half of the
// token+user pair is present.
var ErrIncomplete = errors.New("session must carry both token and user")

// Store is the capability the rest of the application depends on. Call
// sites never touch the storage mechanism directly, which keeps the
// file layout swappable for an in-memory store in tests.
type Store interface {
	// Load returns the persisted session, or a zero Session when none
	// is stored. A corrupt or half-written session reads as absent.
	Load() (Session, error)

	// Save persists the pair atomically, replacing any previous session.
	Save(s Session) error

	// Clear removes the persisted session. Clearing an empty store is
	// a no-op.
	Clear() error
}
