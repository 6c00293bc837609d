// Package config handles configuration for the auth service: defaults, a
// JSON file overlay, environment variables and command-line flags, applied
// in that order.
package config

import "time"

// Config holds runtime settings for the auth service.
//
// Fields:
//   - EndpointAddrHTTP: bind address for REST and GraphQL.
//   - EndpointAddrGRPC: bind address for the internal token validation RPC.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Shared with the gateway.
//   - AccessTokenValidityDuration: access token lifetime; refresh tokens live
//     RefreshTokenMultiplier times longer.
//   - BcryptCost: work factor for new password hashes.
//   - SeedTestUser: create the development account on startup.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	RefreshTokenMultiplier      int
	BcryptCost                  int
	SeedTestUser                bool
	LogFormat                   string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret is insecure and must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5001"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "your-secret-key"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.RefreshTokenMultiplier = 7
	c.BcryptCost = 10
	c.SeedTestUser = false
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// RefreshTokenValidityDuration is the lifetime of refresh tokens.
func (c *Config) RefreshTokenValidityDuration() time.Duration {
	return time.Duration(c.RefreshTokenMultiplier) * c.AccessTokenValidityDuration
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
