// Package forward relays gateway requests to downstream services. It is a
// best-effort proxy: one attempt per call, bounded by a timeout, with
// transport failures turned into a uniform 503.
package forward

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/netx"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

const DefaultTimeout = 10 * time.Second

// Request describes one forwarded call.
type Request struct {
	Service string
	Path    string
	Query   string
	Method  string
	Body    []byte
	// Header is copied verbatim; X-User-ID is always replaced.
	Header   http.Header
	Identity *models.Identity
}

// Response is what the gateway hands back to its caller.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Write relays the response to w.
func (r *Response) Write(w http.ResponseWriter) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

// JSON decodes the body, falling back to the raw text when it is not JSON.
func (r *Response) JSON() any {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return string(r.Body)
	}
	return v
}

// ErrorMessage extracts "error" or "message" from a JSON error body.
func (r *Response) ErrorMessage() string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return "Service returned error: " + http.StatusText(r.Status)
}

type unavailableBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func unavailable(details string) *Response {
	b, _ := json.Marshal(unavailableBody{Error: common.ErrServiceUnavailable.Message, Details: details})
	return &Response{
		Status: http.StatusServiceUnavailable,
		Header: http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:   b,
	}
}

type Forwarder struct {
	services map[string]string
	client   *http.Client
	timeout  time.Duration
	logger   logging.Logger
}

// New builds a Forwarder. A nil client uses a dedicated http.Client; a
// non-positive timeout selects DefaultTimeout.
func New(services map[string]string, client *http.Client, timeout time.Duration, logger logging.Logger) *Forwarder {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{
		services: services,
		client:   client,
		timeout:  timeout,
		logger:   logger.With("module", "forwarder"),
	}
}

// BaseURL returns the configured URL of service.
func (f *Forwarder) BaseURL(service string) (string, bool) {
	u, ok := f.services[service]
	return strings.TrimRight(u, "/"), ok && u != ""
}

// Forward performs req and relays the downstream status and body. It never
// returns an error: any transport failure becomes a 503 response.
func (f *Forwarder) Forward(ctx context.Context, req Request) *Response {
	base, ok := f.BaseURL(req.Service)
	if !ok {
		f.logger.Error(ctx, "unknown service", "service", req.Service)
		return unavailable("unknown service " + req.Service)
	}

	url := base + req.Path
	if req.Query != "" {
		url += "?" + req.Query
	}

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Del(common.UserIDHeader)
	if req.Identity != nil {
		header.Set(common.UserIDHeader, req.Identity.IDString())
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := netx.Do(ctx, f.client, method, url, header, req.Body)
	if err != nil {
		f.logger.Error(ctx, "forward failed",
			"service", req.Service,
			"method", method,
			"url", url,
			"timeout", netx.IsTimeout(err),
			"error", err,
		)
		return unavailable(err.Error())
	}

	return &Response{Status: resp.Status, Header: resp.Header, Body: resp.Body}
}
