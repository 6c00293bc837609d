package logging

import "context"

type ctxKey struct{}

// RequestIDKey is the attribute name under which both adapters log the
// request id carried by the context.
const RequestIDKey = "request_id"

// ContextWithRequestID returns ctx carrying id. An empty id returns ctx
// unchanged.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
