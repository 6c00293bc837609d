package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
	"github.com/dmitrijs2005/hugmood/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Services
// entries are merged into the defaults, not replacing them.
type JsonConfig struct {
	EndpointAddr    *string           `json:"endpoint_addr"`
	Services        map[string]string `json:"services"`
	AuthGRPCAddr    *string           `json:"auth_grpc_addr"`
	SecretKey       *string           `json:"secret_key"`
	ValidateTimeout *timex.Duration   `json:"validate_timeout"`
	ForwardTimeout  *timex.Duration   `json:"forward_timeout"`
	HealthTimeout   *timex.Duration   `json:"health_timeout"`
	LogFormat       *string           `json:"log_format"`
	LogLevel        *string           `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// It panics when the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddr, c.EndpointAddr)
	if config.Services == nil {
		config.Services = map[string]string{}
	}
	for name, url := range c.Services {
		config.Services[name] = url
	}
	setIf(&config.AuthGRPCAddr, c.AuthGRPCAddr)
	setIf(&config.SecretKey, c.SecretKey)
	setDuration(&config.ValidateTimeout, c.ValidateTimeout)
	setDuration(&config.ForwardTimeout, c.ForwardTimeout)
	setDuration(&config.HealthTimeout, c.HealthTimeout)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.LogLevel, c.LogLevel)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
