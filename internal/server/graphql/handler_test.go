package graphql

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/auth"
	"github.com/dmitrijs2005/hugmood/internal/server/credentials"
	"github.com/dmitrijs2005/hugmood/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hugmood/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store := credentials.NewStore(repomanager.NewMemoryRepositoryManager(), bcrypt.MinCost)
	sessions := services.NewSessionService(store, auth.NewTokenService("k", time.Hour, 7), logging.Nop{})
	return NewHandler(NewSchema(sessions, logging.Nop{}))
}

func exec(t *testing.T, h http.Handler, token, query string, vars map[string]any) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var out gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type payload struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID          string  `json:"id"`
		Username    string  `json:"username"`
		DisplayName string  `json:"displayName"`
		AvatarURL   *string `json:"avatarUrl"`
	} `json:"user"`
}

const registerMutation = `mutation($input: RegisterInput!) {
	register(input: $input) { token refreshToken user { id username displayName avatarUrl } }
}`

func registerBob(t *testing.T, h http.Handler) payload {
	t.Helper()
	out := exec(t, h, "", registerMutation, map[string]any{
		"input": map[string]any{"username": "bob", "email": "bob@x.com", "password": "pw", "displayName": "Bobby"},
	})
	require.Empty(t, out.Errors)
	var p payload
	require.NoError(t, json.Unmarshal(out.Data["register"], &p))
	return p
}

func TestRegisterAndMe(t *testing.T) {
	h := newTestHandler(t)
	p := registerBob(t, h)
	assert.Equal(t, "bob", p.User.Username)
	assert.Equal(t, "Bobby", p.User.DisplayName)
	assert.NotEmpty(t, p.User.ID)

	out := exec(t, h, p.Token, `{ me { username email } }`, nil)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"username":"bob","email":"bob@x.com"}`, string(out.Data["me"]))
}

func TestMe_Unauthenticated(t *testing.T) {
	h := newTestHandler(t)
	out := exec(t, h, "", `{ me { id } }`, nil)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Authentication required", out.Errors[0].Message)
	assert.Equal(t, "UNAUTHORIZED", out.Errors[0].Extensions["code"])
}

func TestLogin_ErrorCodes(t *testing.T) {
	h := newTestHandler(t)
	registerBob(t, h)

	const q = `mutation($e: String!, $p: String!) { login(email: $e, password: $p) { token } }`
	out := exec(t, h, "", q, map[string]any{"e": "bob@x.com", "p": "pw"})
	require.Empty(t, out.Errors)

	out = exec(t, h, "", q, map[string]any{"e": "bob@x.com", "p": "bad"})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Invalid email or password", out.Errors[0].Message)
	assert.Equal(t, "INVALID_CREDENTIALS", out.Errors[0].Extensions["code"])
}

func TestRegister_Duplicate(t *testing.T) {
	h := newTestHandler(t)
	registerBob(t, h)
	out := exec(t, h, "", registerMutation, map[string]any{
		"input": map[string]any{"username": "bob", "email": "b2@x.com", "password": "pw"},
	})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "DUPLICATE_USERNAME", out.Errors[0].Extensions["code"])
}

func TestRefreshAndLogout(t *testing.T) {
	h := newTestHandler(t)
	p := registerBob(t, h)

	const refresh = `mutation($t: String!) { refreshToken(token: $t) { token refreshToken } }`
	out := exec(t, h, "", refresh, map[string]any{"t": p.RefreshToken})
	require.Empty(t, out.Errors)
	var rotated payload
	require.NoError(t, json.Unmarshal(out.Data["refreshToken"], &rotated))

	out = exec(t, h, "", refresh, map[string]any{"t": p.RefreshToken})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "INVALID_TOKEN", out.Errors[0].Extensions["code"])

	out = exec(t, h, p.Token, `mutation { logout }`, nil)
	require.Empty(t, out.Errors)
	assert.Equal(t, "true", string(out.Data["logout"]))

	out = exec(t, h, "", refresh, map[string]any{"t": rotated.RefreshToken})
	require.Len(t, out.Errors, 1)

	out = exec(t, h, "", `mutation { logout }`, nil)
	require.Empty(t, out.Errors)
}

func TestChangePasswordAndValidate(t *testing.T) {
	h := newTestHandler(t)
	p := registerBob(t, h)

	const change = `mutation($c: String!, $n: String!) { changePassword(currentPassword: $c, newPassword: $n) { success message } }`
	out := exec(t, h, p.Token, change, map[string]any{"c": "nope", "n": "pw2"})
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"success":false,"message":"Current password is incorrect"}`, string(out.Data["changePassword"]))

	out = exec(t, h, p.Token, change, map[string]any{"c": "pw", "n": "pw2"})
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"success":true,"message":"Password changed successfully"}`, string(out.Data["changePassword"]))

	const validate = `query($t: String!) { validateToken(token: $t) { valid reason user { username } } }`
	out = exec(t, h, "", validate, map[string]any{"t": p.Token})
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"valid":true,"reason":null,"user":{"username":"bob"}}`, string(out.Data["validateToken"]))

	out = exec(t, h, "", validate, map[string]any{"t": "garbage"})
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"valid":false,"reason":"INVALID_TOKEN","user":null}`, string(out.Data["validateToken"]))
}
