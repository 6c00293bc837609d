package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hugmood/internal/httpx"
)

// Routes registers the REST endpoints on mux. extra handlers (GraphQL) are
// mounted by the caller.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/token", h.refresh)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.HandleFunc("POST /auth/password", h.changePassword)
	mux.HandleFunc("GET /auth/me", h.me)
	mux.HandleFunc("POST /auth/validate", h.validate)
	mux.HandleFunc("GET /health", h.health)
}

// NewServerHandler builds the full middleware chain around mux.
func (h *Handler) NewServerHandler(mux *http.ServeMux) http.Handler {
	return httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(h.logger),
		httpx.WithRecover(h.logger),
	)
}
