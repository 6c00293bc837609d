// Package authgate resolves the caller's identity for every gateway request
// and WebSocket connection.
//
// Tokens are validated by the auth service over gRPC. When that call fails
// (transport error, timeout, non-OK status) the gate verifies the token
// locally with the shared secret and produces a degraded identity that
// carries only the credential id. A definitive "invalid" from the auth
// service is final and never falls back.
package authgate

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/authrpc"
	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/httpx"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/auth"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

const DefaultValidateTimeout = 2 * time.Second

// RemoteValidator is implemented by authrpc.Client.
type RemoteValidator interface {
	ValidateToken(ctx context.Context, token string) (*authrpc.Validation, error)
}

// LocalVerifier is implemented by auth.TokenService.
type LocalVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

type Gate struct {
	remote  RemoteValidator
	local   LocalVerifier
	timeout time.Duration
	logger  logging.Logger
}

// New builds a Gate. remote may be nil, in which case every token is
// verified locally.
func New(remote RemoteValidator, local LocalVerifier, timeout time.Duration, logger logging.Logger) *Gate {
	if timeout <= 0 {
		timeout = DefaultValidateTimeout
	}
	return &Gate{
		remote:  remote,
		local:   local,
		timeout: timeout,
		logger:  logger.With("module", "authgate"),
	}
}

// Authenticate resolves token to an identity.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	if g.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, g.timeout)
		v, err := g.remote.ValidateToken(rctx, token)
		cancel()
		if err == nil {
			if v.Valid && v.User != nil {
				return models.IdentityFromUser(v.User), nil
			}
			if v.Reason == string(common.KindTokenExpired) {
				return nil, common.ErrTokenExpired
			}
			return nil, common.ErrInvalidToken
		}
		g.logger.Warn(ctx, "remote token validation failed, verifying locally", "error", err)
	}

	claims, err := g.local.VerifyAccess(token)
	if err != nil {
		return nil, err
	}
	return &models.Identity{ID: claims.UserID, Degraded: true}, nil
}

// Resolve returns the identity of r, or nil when the request carries no
// usable bearer token.
func (g *Gate) Resolve(r *http.Request) *models.Identity {
	token, _ := httpx.BearerToken(r)
	if token == "" {
		return nil
	}
	identity, err := g.Authenticate(r.Context(), token)
	if err != nil {
		return nil
	}
	return identity
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity attached by Optional or
// Required, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey{}).(*models.Identity)
	return identity
}

// Optional attaches whatever identity can be resolved and always calls next.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity := g.Resolve(r); identity != nil {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid token with 401.
func (g *Gate) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := g.Resolve(r)
		if identity == nil {
			httpx.WriteError(w, common.ErrorUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// StripIdentityHeader removes any client-supplied X-User-ID so only the
// gateway can set it.
func StripIdentityHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(common.UserIDHeader)
		next.ServeHTTP(w, r)
	})
}
