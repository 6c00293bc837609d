package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicHidesHash(t *testing.T) {
	u := &User{ID: 1, Username: "alice", Email: "a@x.io", PasswordHash: "$2a$secret", DisplayName: "alice"}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "$2a$secret")

	b, err = json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Contains(t, string(b), `"displayName":"alice"`)

	var nilUser *User
	assert.Nil(t, nilUser.Public())
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tok := &RefreshToken{ExpiresAt: now}

	assert.True(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Second)))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
}

func TestIdentity(t *testing.T) {
	id := IdentityFromUser(&PublicUser{ID: 12, Username: "bob", Email: "b@x.io", DisplayName: "Bob"})
	assert.Equal(t, "12", id.IDString())
	assert.Equal(t, "bob", id.Username)
	assert.False(t, id.Degraded)
}
