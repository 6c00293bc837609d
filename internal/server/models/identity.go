// Package models contains the data types shared by the auth service layers
// and the gateway.
package models

import "strconv"

// Identity is the authenticated principal attached to a request or a
// WebSocket connection. Degraded identities come from local token
// verification and carry only the id.
type Identity struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username,omitempty"`
	Email       string      `json:"email,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	User        *PublicUser `json:"-"`
	Degraded    bool        `json:"-"`
}

// IDString renders the id the way downstream services expect it in
// X-User-ID.
func (i *Identity) IDString() string {
	return strconv.FormatInt(i.ID, 10)
}

// IdentityFromUser builds a full identity from a resolved user.
func IdentityFromUser(u *PublicUser) *Identity {
	return &Identity{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		User:        u,
	}
}
