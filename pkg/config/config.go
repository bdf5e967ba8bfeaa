package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for gridnote-engine's summary algebra
// host. Configuration can come from a YAML file (config.yaml) or
// environment variables; environment variables always override YAML
// values.
type Config struct {
	// Env names the deployment environment, informational only.
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Render bounds the activity-log diff output.
	Render RenderConfig `yaml:"render"`

	// Retention carries the summary producer's row-cap policy.
	Retention RetentionConfig `yaml:"retention"`
}

// RenderConfig bounds rendered tabular diffs.
type RenderConfig struct {
	// MaxRowsPerTable caps the rendered rows per table before the
	// interior run collapses into one omission row.
	MaxRowsPerTable int `yaml:"max_rows_per_table" env:"RENDER_MAX_ROWS_PER_TABLE" env-default:"20"`
}

// RetentionConfig is the producer-side cell retention policy: how many
// literal cell deltas are kept per table before the Unknown sentinel takes
// over, and which columns are exempt from the cap.
type RetentionConfig struct {
	// MaxCellDeltasPerTable caps retained literal cell deltas per table.
	// Zero means unlimited.
	MaxCellDeltasPerTable int `yaml:"max_cell_deltas_per_table" env:"RETENTION_MAX_CELL_DELTAS_PER_TABLE" env-default:"0"`

	// RetainColumnsStr is a comma-separated list of column ids always
	// retained in full.
	RetainColumnsStr string `yaml:"retain_columns" env:"RETENTION_RETAIN_COLUMNS" env-default:""`

	// RetainColumns is the parsed form of RetainColumnsStr (not from config file).
	RetainColumns []string `yaml:"-"`
}

// Load reads configuration from config.yaml (if present) with environment
// variable overrides, or from the environment alone.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Retention.RetainColumns = parseColumnList(cfg.Retention.RetainColumnsStr)

	if cfg.Render.MaxRowsPerTable < 0 {
		return nil, fmt.Errorf("render.max_rows_per_table must not be negative, got %d", cfg.Render.MaxRowsPerTable)
	}
	if cfg.Retention.MaxCellDeltasPerTable < 0 {
		return nil, fmt.Errorf("retention.max_cell_deltas_per_table must not be negative, got %d", cfg.Retention.MaxCellDeltasPerTable)
	}
	return cfg, nil
}

func parseColumnList(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cols = append(cols, trimmed)
		}
	}
	return cols
}
