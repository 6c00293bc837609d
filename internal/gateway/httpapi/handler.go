// Package httpapi is the gateway's HTTP surface: the routed REST API, the
// GraphQL proxy, the WebSocket endpoint and the aggregated health check.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/gateway/authgate"
	"github.com/dmitrijs2005/hugmood/internal/gateway/config"
	"github.com/dmitrijs2005/hugmood/internal/gateway/forward"
	"github.com/dmitrijs2005/hugmood/internal/gateway/health"
	"github.com/dmitrijs2005/hugmood/internal/gateway/routing"
	"github.com/dmitrijs2005/hugmood/internal/httpx"
	"github.com/dmitrijs2005/hugmood/internal/logging"
)

const maxBody = 1 << 20

// Forwarder is implemented by forward.Forwarder.
type Forwarder interface {
	Forward(ctx context.Context, req forward.Request) *forward.Response
	BaseURL(service string) (string, bool)
}

// HealthChecker is implemented by health.Checker.
type HealthChecker interface {
	Check(ctx context.Context) *health.Report
}

// forwardedHeaders are copied from the client request to the downstream
// call. Authorization is only passed on routes that ask for it.
var forwardedHeaders = []string{"Content-Type", "Accept", common.RequestIDHeader}

type Handler struct {
	table     *routing.Table
	gate      *authgate.Gate
	forwarder Forwarder
	health    HealthChecker
	ws        http.Handler
	logger    logging.Logger
}

func NewHandler(table *routing.Table, gate *authgate.Gate, forwarder Forwarder, checker HealthChecker, ws http.Handler, logger logging.Logger) *Handler {
	return &Handler{
		table:     table,
		gate:      gate,
		forwarder: forwarder,
		health:    checker,
		ws:        ws,
		logger:    logger.With("module", "gateway_http"),
	}
}

// Routes builds the gateway mux wrapped in the standard middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	for _, route := range h.table.Routes {
		mux.Handle(route.ServeMuxPattern(), h.withAuth(route.Auth, h.proxy(route)))
	}
	mux.Handle("GET /api/data/{type}", h.gate.Optional(http.HandlerFunc(h.data)))

	mux.HandleFunc("POST /graphql", h.graphqlProxy)
	mux.HandleFunc("GET /graphql", h.graphqlRedirect)
	mux.Handle("GET /ws", h.ws)
	mux.HandleFunc("GET /health", h.healthCheck)
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("/", h.notFound)

	return httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(h.logger),
		httpx.WithRecover(h.logger),
		authgate.StripIdentityHeader,
	)
}

func (h *Handler) withAuth(mode routing.Mode, next http.Handler) http.Handler {
	switch mode {
	case routing.Required:
		return h.gate.Required(next)
	case routing.Optional:
		return h.gate.Optional(next)
	default:
		return next
	}
}

// proxy forwards a routed request, filling path placeholders from the
// request path and userId from the caller when the path has none.
func (h *Handler) proxy(route routing.Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := authgate.IdentityFromContext(r.Context())

		params := map[string]string{}
		for _, name := range routing.Params(route.Target.Path) {
			params[name] = r.PathValue(name)
		}
		if params[routing.UserIDParam] == "" && identity != nil {
			params[routing.UserIDParam] = identity.IDString()
		}
		path, err := routing.Expand(route.Target.Path, params)
		if err != nil {
			httpx.WriteError(w, common.MissingField("Missing path parameter"))
			return
		}

		body, err := readBody(w, r)
		if err != nil {
			httpx.WriteError(w, common.MissingField("Request body too large"))
			return
		}

		header := copyHeaders(r, route.PassAuthorization)
		resp := h.forwarder.Forward(r.Context(), forward.Request{
			Service:  route.Target.Service,
			Path:     path,
			Query:    r.URL.RawQuery,
			Method:   r.Method,
			Body:     body,
			Header:   header,
			Identity: identity,
		})
		resp.Write(w)
	})
}

func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	typ := r.PathValue("type")
	target, ok := h.table.DataType(typ)
	if !ok {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "Unknown data type: " + typ})
		return
	}
	resp := h.forwarder.Forward(r.Context(), forward.Request{
		Service:  target.Service,
		Path:     target.Path,
		Query:    r.URL.RawQuery,
		Method:   http.MethodGet,
		Header:   copyHeaders(r, false),
		Identity: authgate.IdentityFromContext(r.Context()),
	})
	resp.Write(w)
}

func (h *Handler) graphqlProxy(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, common.MissingField("Request body too large"))
		return
	}
	resp := h.forwarder.Forward(r.Context(), forward.Request{
		Service: config.ServiceGraphQL,
		Path:    "/graphql",
		Method:  http.MethodPost,
		Body:    body,
		Header:  copyHeaders(r, true),
	})
	resp.Write(w)
}

func (h *Handler) graphqlRedirect(w http.ResponseWriter, r *http.Request) {
	base, ok := h.forwarder.BaseURL(config.ServiceGraphQL)
	if !ok {
		httpx.WriteError(w, common.ErrServiceUnavailable)
		return
	}
	http.Redirect(w, r, base+"/graphql", http.StatusFound)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, report)
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"service": "api-gateway", "status": "running"})
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorBody{Error: "Not found"})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, nil
	}
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}

func copyHeaders(r *http.Request, withAuthorization bool) http.Header {
	out := http.Header{}
	for _, name := range forwardedHeaders {
		if v := r.Header.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	if rid := httpx.RequestIDFromContext(r.Context()); rid != "" {
		out.Set(common.RequestIDHeader, rid)
	}
	if withAuthorization {
		if v := r.Header.Get(common.AuthorizationHeader); v != "" {
			out.Set(common.AuthorizationHeader, v)
		}
	}
	return out
}
