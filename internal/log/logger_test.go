package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{" error ", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_JSONKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	logger.With(zap.String("task_id", "abc")).Info("checksum computed", zap.String("checksum", "CBF43926"))
	_ = logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	for key, want := range map[string]string{
		"level":    "info",
		"message":  "checksum computed",
		"task_id":  "abc",
		"checksum": "CBF43926",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestNewWithWriter_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("warn", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level entries logged: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}
