// Package config loads the environment defaults of the labeler.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds settings that can be given through the environment.
// Command-line flags override them.
type Config struct {
	LabelsFile  string   `env:"VIDEOLABELER_LABELS_FILE"  envDefault:"labels.json"`
	Extensions  []string `env:"VIDEOLABELER_EXTENSIONS"   envDefault:".mp4" envSeparator:","`
	DecodeWidth int      `env:"VIDEOLABELER_DECODE_WIDTH" envDefault:"320"`
	LogLevel    string   `env:"VIDEOLABELER_LOG_LEVEL"    envDefault:"warn"`
	LogFile     string   `env:"VIDEOLABELER_LOG_FILE"`
}

// Load parses the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.DecodeWidth < 0 {
		return nil, fmt.Errorf("VIDEOLABELER_DECODE_WIDTH must not be negative, got %d", cfg.DecodeWidth)
	}
	if strings.ContainsAny(cfg.LabelsFile, `/\`) || cfg.LabelsFile == "" {
		return nil, fmt.Errorf("VIDEOLABELER_LABELS_FILE must be a plain file name, got %q", cfg.LabelsFile)
	}
	return cfg, nil
}

// Vars exposes the configuration as kong interpolation variables
func (c *Config) Vars() map[string]string {
	return map[string]string{
		"labels_file":  c.LabelsFile,
		"extensions":   strings.Join(c.Extensions, ","),
		"decode_width": strconv.Itoa(c.DecodeWidth),
	}
}
