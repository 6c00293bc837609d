// Package httpapi exposes the session operations over REST.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/httpx"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
	"github.com/dmitrijs2005/hugmood/internal/server/services"
)

// Sessions is implemented by services.SessionService.
type Sessions interface {
	Login(ctx context.Context, identifier, password string) (*services.AuthResult, error)
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, identity *models.Identity) error
	ChangePassword(ctx context.Context, identity *models.Identity, current, next string) (*services.PasswordChangeResult, error)
	ValidateToken(ctx context.Context, token string) (*services.Validation, error)
	Me(ctx context.Context, identity *models.Identity) (*models.PublicUser, error)
	IdentityFromToken(token string) (*models.Identity, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	sessions Sessions
	db       Pinger
	logger   logging.Logger
}

func NewHandler(sessions Sessions, db Pinger, logger logging.Logger) *Handler {
	return &Handler{sessions: sessions, db: db, logger: logger.With("module", "http_api")}
}

type loginRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (l loginRequest) id() string {
	switch {
	case l.Identifier != "":
		return l.Identifier
	case l.Email != "":
		return l.Email
	default:
		return l.Username
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.sessions.Login(r.Context(), req.id(), req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.sessions.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

type tokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (t tokenRequest) value() string {
	if t.Token != "" {
		return t.Token
	}
	return t.RefreshToken
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.sessions.Refresh(r.Context(), req.value())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// logout always answers success; a missing or bad token simply means there
// is nothing to revoke.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity := h.optionalIdentity(r)
	if err := h.sessions.Logout(r.Context(), identity); err != nil {
		h.logger.Error(r.Context(), "logout failed", "error", err)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	identity, err := h.requiredIdentity(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.sessions.ChangePassword(r.Context(), identity, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.requiredIdentity(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	u, err := h.sessions.Me(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	token := req.value()
	if token == "" {
		token, _ = httpx.BearerToken(r)
	}
	res, err := h.sessions.ValidateToken(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	db := "healthy"
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "database ping failed", "error", err)
		status, code, db = "degraded", http.StatusServiceUnavailable, "unhealthy"
	}
	httpx.WriteJSON(w, code, map[string]any{
		"status":   status,
		"service":  "auth",
		"services": map[string]string{"database": db},
	})
}

func (h *Handler) optionalIdentity(r *http.Request) *models.Identity {
	token, _ := httpx.BearerToken(r)
	if token == "" {
		return nil
	}
	identity, err := h.sessions.IdentityFromToken(token)
	if err != nil {
		return nil
	}
	return identity
}

func (h *Handler) requiredIdentity(r *http.Request) (*models.Identity, error) {
	token, _ := httpx.BearerToken(r)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	return h.sessions.IdentityFromToken(token)
}

// fail logs unexpected errors before writing them; kinded errors are
// ordinary client outcomes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if common.KindOf(err) == common.KindInternal {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	httpx.WriteError(w, err)
}
