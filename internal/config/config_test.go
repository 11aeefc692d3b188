package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envVars = []string{
	"RIPCHECK_FFMPEG", "RIPCHECK_FFPROBE", "RIPCHECK_CHUNK_BYTES",
	"RIPCHECK_QUEUE_DEPTH", "RIPCHECK_LOG_LEVEL", "RIPCHECK_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ripcheck.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// --- Environment ---

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q, want ffmpeg", cfg.FFmpegPath)
	}
	if cfg.FFprobePath != "ffprobe" {
		t.Errorf("FFprobePath = %q, want ffprobe", cfg.FFprobePath)
	}
	if cfg.ChunkBytes != 65536 {
		t.Errorf("ChunkBytes = %d, want 65536", cfg.ChunkBytes)
	}
	if cfg.QueueDepth != 16 {
		t.Errorf("QueueDepth = %d, want 16", cfg.QueueDepth)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.Format != "table" {
		t.Errorf("Format = %q, want table", cfg.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RIPCHECK_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("RIPCHECK_FFPROBE", "/opt/ffmpeg/bin/ffprobe")
	t.Setenv("RIPCHECK_CHUNK_BYTES", "8192")
	t.Setenv("RIPCHECK_QUEUE_DEPTH", "4")
	t.Setenv("RIPCHECK_LOG_LEVEL", "debug")
	t.Setenv("RIPCHECK_FORMAT", "json")

	cfg := Load()

	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q, want env override", cfg.FFmpegPath)
	}
	if cfg.FFprobePath != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("FFprobePath = %q, want env override", cfg.FFprobePath)
	}
	if cfg.ChunkBytes != 8192 {
		t.Errorf("ChunkBytes = %d, want 8192", cfg.ChunkBytes)
	}
	if cfg.QueueDepth != 4 {
		t.Errorf("QueueDepth = %d, want 4", cfg.QueueDepth)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("RIPCHECK_QUEUE_DEPTH", "lots")
	cfg := Load()
	if cfg.QueueDepth != 16 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 16", cfg.QueueDepth)
	}
}

// --- ExpandEnv ---

func TestExpandEnv(t *testing.T) {
	t.Setenv("RIPCHECK_TEST_SET", "value")
	t.Setenv("RIPCHECK_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "no vars here", "no vars here"},
		{"set", "${RIPCHECK_TEST_SET}", "value"},
		{"set with default", "${RIPCHECK_TEST_SET:-other}", "value"},
		{"unset", "${RIPCHECK_TEST_UNSET}", ""},
		{"unset with default", "${RIPCHECK_TEST_UNSET:-fallback}", "fallback"},
		{"empty with default", "${RIPCHECK_TEST_EMPTY:-fallback}", "fallback"},
		{"embedded", "bin=${RIPCHECK_TEST_SET}/ffmpeg", "bin=value/ffmpeg"},
		{"bare dollar", "$RIPCHECK_TEST_SET", "$RIPCHECK_TEST_SET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- LoadFile ---

func TestLoadFile_Overlay(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, `ffmpeg: /usr/local/bin/ffmpeg
queue_depth: 32
format: yaml
`)
	cfg, err := LoadFile(path, Load())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.FFmpegPath != "/usr/local/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.QueueDepth != 32 {
		t.Errorf("QueueDepth = %d, want 32", cfg.QueueDepth)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	// untouched keys keep the base value
	if cfg.FFprobePath != "ffprobe" || cfg.ChunkBytes != 65536 || cfg.LogLevel != "warn" {
		t.Errorf("base values lost: %+v", cfg)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("FFMPEG_HOME", "/srv/ffmpeg")
	path := writeTemp(t, `ffmpeg: ${FFMPEG_HOME}/ffmpeg
log_level: ${RIPCHECK_TEST_LEVEL:-info}
`)
	cfg, err := LoadFile(path, Load())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.FFmpegPath != "/srv/ffmpeg/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), Load())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "ffmpeg: [unterminated\n")
	_, err := LoadFile(path, Load())
	if err == nil || !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("err = %v, want invalid YAML", err)
	}
}
