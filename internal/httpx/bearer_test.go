package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantToken   string
		wantPresent bool
	}{
		{name: "absent"},
		{name: "bearer", header: "Bearer abc.def", wantToken: "abc.def", wantPresent: true},
		{name: "lowercase scheme", header: "bearer xyz", wantToken: "xyz", wantPresent: true},
		{name: "basic scheme", header: "Basic dXNlcjpwdw==", wantPresent: true},
		{name: "scheme only", header: "Bearer", wantPresent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			tok, present := BearerToken(r)
			assert.Equal(t, tt.wantToken, tok)
			assert.Equal(t, tt.wantPresent, present)
		})
	}
}
