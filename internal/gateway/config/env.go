package config

import (
	"time"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
)

// serviceEnv names the environment variable carrying each service URL.
var serviceEnv = map[string]string{
	ServiceAuth:    "AUTH_SERVICE_URL",
	ServiceUser:    "USER_SERVICE_URL",
	ServiceMood:    "MOOD_SERVICE_URL",
	ServiceHug:     "HUG_SERVICE_URL",
	ServiceSocial:  "SOCIAL_SERVICE_URL",
	ServiceStreak:  "STREAK_SERVICE_URL",
	ServiceGraphQL: "GRAPHQL_GATEWAY_URL",
}

// parseEnv overlays environment variables. Timeouts are in milliseconds
// unless they carry a unit.
func parseEnv(config *Config) {
	var port string
	flagx.EnvString(&port, "PORT")
	if port != "" {
		config.EndpointAddr = ":" + port
	}

	if config.Services == nil {
		config.Services = map[string]string{}
	}
	for name, env := range serviceEnv {
		url := config.Services[name]
		flagx.EnvString(&url, env)
		if url != "" {
			config.Services[name] = url
		}
	}

	flagx.EnvString(&config.AuthGRPCAddr, "AUTH_GRPC_ADDR")
	flagx.EnvString(&config.SecretKey, "JWT_SECRET")
	flagx.EnvString(&config.LogFormat, "LOG_FORMAT")
	flagx.EnvString(&config.LogLevel, "LOG_LEVEL")

	must(flagx.EnvDuration(&config.ValidateTimeout, "VALIDATE_TIMEOUT", time.Millisecond))
	must(flagx.EnvDuration(&config.ForwardTimeout, "FORWARD_TIMEOUT", time.Millisecond))
	must(flagx.EnvDuration(&config.HealthTimeout, "HEALTH_TIMEOUT", time.Millisecond))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
