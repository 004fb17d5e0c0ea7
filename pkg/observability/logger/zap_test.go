package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "json format with debug level",
			config: Config{Level: DebugLevel, Format: JSONFormat},
		},
		{
			name:   "text format with info level",
			config: Config{Level: InfoLevel, Format: TextFormat},
		},
		{
			name:   "empty format defaults to text",
			config: Config{Level: WarnLevel},
		},
		{
			name:   "invalid level falls back to info",
			config: Config{Level: "invalid", Format: JSONFormat},
		},
		{
			name:    "invalid format",
			config:  Config{Level: InfoLevel, Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.Output = &buf
			log, err := NewZapLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewZapLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && log == nil {
				t.Fatal("NewZapLogger() returned nil logger")
			}
		})
	}
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		logFunc  func(Logger)
		expected bool
	}{
		{"debug level logs debug", DebugLevel, func(l Logger) { l.Debug("m") }, true},
		{"info level drops debug", InfoLevel, func(l Logger) { l.Debug("m") }, false},
		{"warn level logs warn", WarnLevel, func(l Logger) { l.Warn("m") }, true},
		{"warn level drops info", WarnLevel, func(l Logger) { l.Info("m") }, false},
		{"error level logs error", ErrorLevel, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewZapLogger(Config{Level: tt.level, Format: JSONFormat, Output: &buf})
			if err != nil {
				t.Fatalf("NewZapLogger() error = %v", err)
			}
			tt.logFunc(log)
			_ = log.Sync()
			if got := buf.Len() > 0; got != tt.expected {
				t.Fatalf("output present = %v, want %v (%q)", got, tt.expected, buf.String())
			}
		})
	}
}

func TestZapLogger_WithContextAddsScreen(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger(Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewZapLogger() error = %v", err)
	}

	ctx := ContextWithScreen(context.Background(), "orders")
	log.WithContext(ctx).With("domain", "orders").Info("query applied", "visible", 3)
	_ = log.Sync()

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if entry["screen"] != "orders" {
		t.Fatalf("expected screen field, got %v", entry["screen"])
	}
	if entry["message"] != "query applied" {
		t.Fatalf("unexpected message %v", entry["message"])
	}
	if entry["visible"] != float64(3) {
		t.Fatalf("unexpected visible field %v", entry["visible"])
	}
}

func TestZapLogger_WithContextWithoutScreen(t *testing.T) {
	var buf bytes.Buffer
	log, _ := NewZapLogger(Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})

	if got := log.WithContext(context.Background()); got != Logger(log) {
		t.Fatal("expected same logger when context carries no screen")
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, " error ": ErrorLevel,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("trace"); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("expected invalid log level error, got %v", err)
	}
}

func TestParseLogFormat(t *testing.T) {
	if got, err := ParseLogFormat("console"); err != nil || got != TextFormat {
		t.Fatalf("ParseLogFormat(console) = %q, %v", got, err)
	}
	if got, err := ParseLogFormat("json"); err != nil || got != JSONFormat {
		t.Fatalf("ParseLogFormat(json) = %q, %v", got, err)
	}
	if _, err := ParseLogFormat("xml"); err == nil {
		t.Fatal("expected error for xml format")
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("ignored", "k", "v")
	if log.With("a", 1) == nil || log.WithContext(context.TODO()) == nil {
		t.Fatal("nop logger must return itself")
	}
}
