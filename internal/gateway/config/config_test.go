package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":4000", cfg.EndpointAddr)
	assert.Equal(t, "http://localhost:5001", cfg.Services[ServiceAuth])
	assert.Equal(t, "http://localhost:5000", cfg.Services[ServiceGraphQL])
	assert.Len(t, cfg.Services, 7)
	assert.Equal(t, 2*time.Second, cfg.ValidateTimeout)
	assert.Equal(t, 10*time.Second, cfg.ForwardTimeout)
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "gw.json")
	b, err := json.Marshal(map[string]any{
		"endpoint_addr":    ":8000",
		"services":         map[string]string{"mood": "http://mood:9000"},
		"auth_grpc_addr":   "auth:50051",
		"validate_timeout": "500ms",
		"forward_timeout":  "3s",
		"log_format":       "console",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	os.Args = []string{"testbin", "-c", path}
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8000", cfg.EndpointAddr)
	assert.Equal(t, "http://mood:9000", cfg.Services[ServiceMood])
	assert.Equal(t, "http://localhost:5002", cfg.Services[ServiceUser], "unnamed services keep defaults")
	assert.Equal(t, "auth:50051", cfg.AuthGRPCAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.ValidateTimeout)
	assert.Equal(t, 3*time.Second, cfg.ForwardTimeout)
	assert.Equal(t, 2*time.Second, cfg.HealthTimeout)
	assert.Equal(t, "console", cfg.LogFormat)
}

func Test_parseJson_BadFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "missing.json")}
	assert.Panics(t, func() { parseJson(&Config{}) })
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("PORT", "4100")
	t.Setenv("HUG_SERVICE_URL", "http://hugs")
	t.Setenv("AUTH_GRPC_ADDR", "auth:1")
	t.Setenv("JWT_SECRET", "s3")
	t.Setenv("FORWARD_TIMEOUT", "250")
	t.Setenv("VALIDATE_TIMEOUT", "1s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":4100", cfg.EndpointAddr)
	assert.Equal(t, "http://hugs", cfg.Services[ServiceHug])
	assert.Equal(t, "auth:1", cfg.AuthGRPCAddr)
	assert.Equal(t, "s3", cfg.SecretKey)
	assert.Equal(t, 250*time.Millisecond, cfg.ForwardTimeout)
	assert.Equal(t, time.Second, cfg.ValidateTimeout)
}

func Test_parseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("HEALTH_TIMEOUT", "soon")
	assert.Panics(t, func() { parseEnv(&Config{}) })
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd", "-a", ":4444", "-r", "auth:2", "-s", "k", "-f", "4s", "-unknown", "x"}
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":4444", cfg.EndpointAddr)
	assert.Equal(t, "auth:2", cfg.AuthGRPCAddr)
	assert.Equal(t, "k", cfg.SecretKey)
	assert.Equal(t, 4*time.Second, cfg.ForwardTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "gw.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint_addr":":1","secret_key":"json"}`), 0o600))
	t.Setenv("JWT_SECRET", "env")

	os.Args = []string{"cmd", "-c", path, "-s", "flag"}
	cfg := LoadConfig()

	assert.Equal(t, ":1", cfg.EndpointAddr)
	assert.Equal(t, "flag", cfg.SecretKey)
}
