// Package client talks to the gateway's auth REST endpoints on behalf of
// authctl and keeps the resulting session on disk.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/netx"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// ErrUnavailable is returned when the gateway cannot be reached.
var ErrUnavailable = errors.New("gateway unavailable")

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is a 401 from the gateway.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// AuthResult is the body of login, register and refresh responses.
type AuthResult struct {
	Token        string             `json:"token"`
	RefreshToken string             `json:"refreshToken"`
	User         *models.PublicUser `json:"user"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type PasswordChangeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client is a thin JSON client for the gateway.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func New(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, timeout: timeout}
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.call(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	var out AuthResult
	err := c.call(ctx, http.MethodPost, "/api/auth/token", "", map[string]string{"refreshToken": refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, current, next string) (*PasswordChangeResult, error) {
	var out PasswordChangeResult
	err := c.call(ctx, http.MethodPost, "/api/auth/password", token, map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.PublicUser, error) {
	var out models.PublicUser
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the gateway's aggregated health report verbatim. A
// degraded gateway answers 503, which is not an error here.
func (c *Client) Health(ctx context.Context) (json.RawMessage, int, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return nil, 0, err
	}
	return json.RawMessage(resp.Body), resp.Status, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return decodeError(resp)
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (*netx.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	if token != "" {
		header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := netx.Do(ctx, c.http, method, c.baseURL+path, header, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func decodeError(resp *netx.Response) error {
	var body struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Details string `json:"details"`
	}
	apiErr := &APIError{Status: resp.Status, Message: http.StatusText(resp.Status)}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	}
	return apiErr
}
