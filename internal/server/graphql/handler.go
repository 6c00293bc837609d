package graphql

import (
	"context"
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/dmitrijs2005/hugmood/internal/httpx"
	"github.com/dmitrijs2005/hugmood/internal/logging"
)

type tokenKey struct{}

func tokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}

// NewSchema parses the schema against a resolver backed by sessions.
func NewSchema(sessions Sessions, logger logging.Logger) *gql.Schema {
	r := &Resolver{sessions: sessions, logger: logger.With("module", "graphql")}
	return gql.MustParseSchema(schemaSDL, r, gql.MaxDepth(10))
}

// NewHandler serves POST /graphql. The bearer token, if any, is made
// available to resolvers through the request context.
func NewHandler(schema *gql.Schema) http.Handler {
	relayHandler := &relay.Handler{Schema: schema}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, _ := httpx.BearerToken(r); token != "" {
			r = r.WithContext(context.WithValue(r.Context(), tokenKey{}, token))
		}
		relayHandler.ServeHTTP(w, r)
	})
}
