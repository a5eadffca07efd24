package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// ========================================
// Level Tests
// ========================================

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" debug ", slog.LevelDebug},

		{"info", slog.LevelInfo},
		{"", slog.LevelInfo}, // default

		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},

		{"error", slog.LevelError},

		{"trace", slog.LevelInfo}, // unsupported, default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// ========================================
// Logger Tests
// ========================================

func TestNewWith_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWith(Options{Writer: &buf, Format: "json", Level: "warn"})

	logger.Info("hidden")
	logger.Warn("row failed", "row", 3, "run_id", "01HZX")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Errorf("info record written at warn level: %s", line)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("output is not one JSON record: %v\n%s", err, line)
	}
	if rec["msg"] != "row failed" || rec["run_id"] != "01HZX" || rec["row"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
	src, ok := rec["source"].(map[string]any)
	if !ok {
		t.Fatalf("source = %v, want an object", rec["source"])
	}
	if file, _ := src["file"].(string); file != "logging_test.go" {
		t.Errorf("source file = %q, want path relative to the working directory", file)
	}
}

func TestNewWith_TextForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewWith(Options{Writer: &buf, Format: "text"}).Info("hello", "component", "pipeline")
	if out := buf.String(); !strings.Contains(out, "msg=hello") || !strings.Contains(out, "component=pipeline") {
		t.Errorf("text output = %q", out)
	}

	buf.Reset()
	NewWith(Options{Writer: &buf}).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("buffer writer should default to JSON, got %q", buf.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	o := FromEnv(&buf)
	if o.Format != "json" || o.Level != "debug" || o.Writer != &buf {
		t.Errorf("FromEnv() = %+v", o)
	}
}

func TestSetDefault(t *testing.T) {
	logger := SetDefault()
	if logger == nil {
		t.Fatal("SetDefault() should return a logger")
	}
	if slog.Default() != logger {
		t.Error("slog.Default() should be the logger returned by SetDefault()")
	}
}
