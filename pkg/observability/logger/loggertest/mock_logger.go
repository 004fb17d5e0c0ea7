// Package loggertest provides a capturing logger for tests.
package loggertest

import (
	"context"
	"sync"

	"github.com/agripanel/listquery/pkg/observability/logger"
)

// MockLogger captures log entries for assertion in tests.
type MockLogger struct {
	fields []any
	sink   *sink
}

type sink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a single captured log entry.
type LogEntry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// New returns an empty MockLogger.
func New() *MockLogger {
	return &MockLogger{sink: &sink{}}
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("debug", msg, args) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("info", msg, args) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("warn", msg, args) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("error", msg, args) }

// With returns a child sharing the capture buffer with extra fields attached.
func (m *MockLogger) With(args ...any) logger.Logger {
	fields := append(append([]any{}, m.fields...), args...)
	return &MockLogger{fields: fields, sink: m.sink}
}

// WithContext attaches the screen name from ctx when present.
func (m *MockLogger) WithContext(ctx context.Context) logger.Logger {
	if screen := logger.ScreenFromContext(ctx); screen != "" {
		return m.With("screen", screen)
	}
	return m
}

// Entries returns a snapshot of captured entries.
func (m *MockLogger) Entries() []LogEntry {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	return append([]LogEntry(nil), m.sink.entries...)
}

// Count returns how many entries were captured at level.
func (m *MockLogger) Count(level string) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (m *MockLogger) record(level, msg string, args []any) {
	all := append(append([]any{}, m.fields...), args...)
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(m.sink.entries, LogEntry{Level: level, Msg: msg, Fields: argsToMap(all)})
}

func argsToMap(args []any) map[string]any {
	fields := make(map[string]any)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	return fields
}
