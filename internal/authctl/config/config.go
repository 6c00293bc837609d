// Package config handles configuration for the authctl CLI.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for authctl.
//
// Fields:
//   - GatewayURL: base URL of the API gateway.
//   - SessionFile: where the current token pair is kept between runs.
//   - Timeout: deadline for one API call.
type Config struct {
	GatewayURL  string
	SessionFile string
	Timeout     time.Duration
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.GatewayURL = "http://localhost:4000"
	c.SessionFile = defaultSessionFile()
	c.Timeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "hugmood", "session.json")
}
