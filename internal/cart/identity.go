package cart

import "github.com/google/uuid"

// Identity captures how the caller is known to the cart subsystem. Every
// shopper carries a session cart id minted by the edge; signed-in shoppers
// additionally carry their user id, which takes precedence when locating the
// cart so a sign-in on a new device still finds the account cart.
type Identity struct {
	SessionCartID string
	UserID        *uuid.UUID
}

// HasSession reports whether the caller presented a session cart id.
func (i Identity) HasSession() bool {
	return i.SessionCartID != ""
}

// Authenticated reports whether the caller is a signed-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != nil && *i.UserID != uuid.Nil
}
