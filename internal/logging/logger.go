// Package logging defines the structured-logging interface used across the
// project and its slog and zerolog implementations.
package logging

import "context"

// Logger is a context-aware, structured logger. Implementations add the
// request id carried by ctx (see ContextWithRequestID) to every record.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "starting server", "addr", addr, "mode", mode)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
