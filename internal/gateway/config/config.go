// Package config handles configuration for the API gateway: defaults, a
// JSON file overlay, environment variables and command-line flags, applied
// in that order.
package config

import "time"

// Downstream service names. They key Config.Services and the routing table.
const (
	ServiceAuth    = "auth"
	ServiceUser    = "user"
	ServiceMood    = "mood"
	ServiceHug     = "hug"
	ServiceSocial  = "social"
	ServiceStreak  = "streak"
	ServiceGraphQL = "graphql"
)

// Config holds runtime settings for the gateway.
//
// Fields:
//   - EndpointAddr: bind address for HTTP and WebSocket.
//   - Services: base URL of each downstream service, keyed by service name.
//   - AuthGRPCAddr: address of the auth service token validation RPC.
//   - SecretKey: JWT secret shared with the auth service, used only by the
//     local fallback verification.
//   - ValidateTimeout: deadline for one remote token validation.
//   - ForwardTimeout: deadline for one forwarded call.
//   - HealthTimeout: deadline for one downstream health probe.
type Config struct {
	EndpointAddr    string
	Services        map[string]string
	AuthGRPCAddr    string
	SecretKey       string
	ValidateTimeout time.Duration
	ForwardTimeout  time.Duration
	HealthTimeout   time.Duration
	LogFormat       string
	LogLevel        string
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":4000"
	c.Services = map[string]string{
		ServiceAuth:    "http://localhost:5001",
		ServiceUser:    "http://localhost:5002",
		ServiceMood:    "http://localhost:5003",
		ServiceHug:     "http://localhost:5004",
		ServiceSocial:  "http://localhost:5005",
		ServiceStreak:  "http://localhost:5006",
		ServiceGraphQL: "http://localhost:5000",
	}
	c.AuthGRPCAddr = "localhost:50051"
	c.SecretKey = "your-secret-key"
	c.ValidateTimeout = 2 * time.Second
	c.ForwardTimeout = 10 * time.Second
	c.HealthTimeout = 2 * time.Second
	c.LogFormat = "json"
	c.LogLevel = "info"
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
