package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
	"github.com/dmitrijs2005/hugmood/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the current value untouched.
type JsonConfig struct {
	GatewayURL  *string         `json:"gateway_url"`
	SessionFile *string         `json:"session_file"`
	Timeout     *timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. Read
// and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	applyJson(cfg, data)
}

func applyJson(cfg *Config, data []byte) {
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.GatewayURL != nil {
		cfg.GatewayURL = *jc.GatewayURL
	}
	if jc.SessionFile != nil {
		cfg.SessionFile = *jc.SessionFile
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
}
