// Package common contains shared constants, typed errors and small helpers
// used by both the auth service and the gateway.
package common

// UserIDHeader is the trusted header carrying the authenticated user id on
// requests forwarded to downstream services. Inbound copies are stripped.
const UserIDHeader = "X-User-ID"

// AuthorizationHeader carries the bearer access token.
const AuthorizationHeader = "Authorization"

// RequestIDHeader is echoed back on every HTTP response.
const RequestIDHeader = "X-Request-Id"
