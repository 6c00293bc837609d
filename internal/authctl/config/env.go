package config

import (
	"time"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
)

// parseEnv overlays HUGMOOD_GATEWAY_URL, HUGMOOD_SESSION_FILE and
// HUGMOOD_TIMEOUT (milliseconds unless it carries a unit).
func parseEnv(cfg *Config) {
	flagx.EnvString(&cfg.GatewayURL, "HUGMOOD_GATEWAY_URL")
	flagx.EnvString(&cfg.SessionFile, "HUGMOOD_SESSION_FILE")
	if err := flagx.EnvDuration(&cfg.Timeout, "HUGMOOD_TIMEOUT", time.Millisecond); err != nil {
		panic(err)
	}
}
