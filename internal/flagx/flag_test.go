package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	gatewayFlags := []string{"-a", "-r", "-s", "-f"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "gateway flags with values",
			args:    []string{"-a", ":4000", "-r", "auth:50051", "-x", "1"},
			allowed: gatewayFlags,
			want:    []string{"-a", ":4000", "-r", "auth:50051"},
		},
		{
			name:    "equals form",
			args:    []string{"-s=secret", "-config=gw.json"},
			allowed: gatewayFlags,
			want:    []string{"-s=secret"},
		},
		{
			name:    "auth server boolean flag keeps following flag",
			args:    []string{"-seed", "-d", "postgres://db"},
			allowed: []string{"-seed", "-d"},
			want:    []string{"-seed", "-d", "postgres://db"},
		},
		{
			name:    "authctl command is not a flag value",
			args:    []string{"-t", "5s", "whoami"},
			allowed: []string{"-t"},
			want:    []string{"-t", "5s"},
		},
		{
			name:    "dangling flag",
			args:    []string{"-a"},
			allowed: gatewayFlags,
			want:    []string{"-a"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "x"},
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	cases := map[string]struct {
		args []string
		want string
	}{
		"short":         {[]string{"gateway", "-c", "gw.json", "-a", ":4000"}, "gw.json"},
		"long with eq":  {[]string{"authserver", "-config=auth.json"}, "auth.json"},
		"absent":        {[]string{"authctl", "whoami"}, ""},
		"last one wins": {[]string{"gateway", "-c", "a.json", "-config", "b.json"}, "b.json"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			os.Args = tc.args
			assert.Equal(t, tc.want, JsonConfigFlags())
		})
	}
}
