package httpx

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/hugmood/internal/common"
)

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively. present reports whether the header
// was sent at all, so callers can tell "anonymous" from "malformed".
func BearerToken(r *http.Request) (token string, present bool) {
	h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeader))
	if h == "" {
		return "", false
	}
	scheme, rest, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(rest), true
}
