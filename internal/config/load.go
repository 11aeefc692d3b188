package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML config file layout. Unset keys leave the environment
// value in place.
type File struct {
	FFmpeg     string `yaml:"ffmpeg"`
	FFprobe    string `yaml:"ffprobe"`
	ChunkBytes int    `yaml:"chunk_bytes"`
	QueueDepth int    `yaml:"queue_depth"`
	LogLevel   string `yaml:"log_level"`
	Format     string `yaml:"format"`
}

// LoadFile reads a YAML config file, expands environment variables in it,
// and overlays the values it sets on base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, fmt.Errorf("config file not found: %s", path)
		}
		return base, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &f); err != nil {
		return base, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return f.apply(base), nil
}

func (f File) apply(cfg Config) Config {
	if f.FFmpeg != "" {
		cfg.FFmpegPath = f.FFmpeg
	}
	if f.FFprobe != "" {
		cfg.FFprobePath = f.FFprobe
	}
	if f.ChunkBytes > 0 {
		cfg.ChunkBytes = f.ChunkBytes
	}
	if f.QueueDepth > 0 {
		cfg.QueueDepth = f.QueueDepth
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.Format != "" {
		cfg.Format = f.Format
	}
	return cfg
}
