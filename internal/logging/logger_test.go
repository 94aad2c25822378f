package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(common.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("extract.text.done", "fields", 7)

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatal("debug record should be filtered at info level")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", line, err)
	}
	if rec["msg"] != "extract.text.done" || rec["fields"] != float64(7) {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(common.LoggingConfig{Level: "debug"}, &buf).Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}
