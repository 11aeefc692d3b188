package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Decoders
	FFmpegPath  string
	FFprobePath string
	ChunkBytes  int // bytes read from ffmpeg per chunk
	QueueDepth  int // decoded chunks buffered ahead of the checksum loop

	// Output
	LogLevel string // debug, info, warn, error
	Format   string // table, json, yaml, msgpack
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		FFmpegPath:  envStr("RIPCHECK_FFMPEG", "ffmpeg"),
		FFprobePath: envStr("RIPCHECK_FFPROBE", "ffprobe"),
		ChunkBytes:  envInt("RIPCHECK_CHUNK_BYTES", 64*1024),
		QueueDepth:  envInt("RIPCHECK_QUEUE_DEPTH", 16),

		LogLevel: envStr("RIPCHECK_LOG_LEVEL", "warn"),
		Format:   envStr("RIPCHECK_FORMAT", "table"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
