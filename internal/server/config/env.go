package config

import (
	"time"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
)

// parseEnv overlays environment variables. PORT only sets the HTTP port;
// TOKEN_EXPIRATION is in seconds unless it carries a unit.
func parseEnv(config *Config) {
	var port string
	flagx.EnvString(&port, "PORT")
	if port != "" {
		config.EndpointAddrHTTP = ":" + port
	}

	flagx.EnvString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	flagx.EnvString(&config.DatabaseDSN, "DATABASE_URL")
	flagx.EnvString(&config.SecretKey, "JWT_SECRET")
	flagx.EnvString(&config.LogFormat, "LOG_FORMAT")
	flagx.EnvString(&config.LogLevel, "LOG_LEVEL")

	must(flagx.EnvDuration(&config.AccessTokenValidityDuration, "TOKEN_EXPIRATION", time.Second))
	must(flagx.EnvInt(&config.BcryptCost, "BCRYPT_COST"))
	must(flagx.EnvBool(&config.SeedTestUser, "SEED_TEST_USER"))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
