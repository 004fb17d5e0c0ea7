package logger

import (
	"context"
)

// Logger defines the interface for structured logging.
// All log methods accept a message string followed by key-value pairs for structured fields.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info-level message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning-level message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error-level message with optional key-value pairs
	Error(msg string, args ...any)

	// With creates a child logger with additional key-value pairs that will be
	// included in all subsequent log entries
	With(args ...any) Logger

	// WithContext creates a child logger carrying the screen name found in ctx
	WithContext(ctx context.Context) Logger
}

type contextKey struct{}

// ContextWithScreen returns a context tagged with the name of the screen driving the query.
func ContextWithScreen(ctx context.Context, screen string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, screen)
}

// ScreenFromContext returns the screen name stored by ContextWithScreen.
func ScreenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	screen, _ := ctx.Value(contextKey{}).(string)
	return screen
}

type nopLogger struct{}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (n nopLogger) With(...any) Logger                 { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
