package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"standcore/internal/ingest"
)

// Config is the YAML run configuration. Environment variables in the file
// are expanded before parsing, so paths and DSNs can stay out of the file.
type Config struct {
	SiteID      string        `yaml:"site_id"`
	Methods     []string      `yaml:"methods"`
	Inputs      ingest.Paths  `yaml:"inputs"`
	Outlier     OutlierConfig `yaml:"outlier"`
	Concurrency int           `yaml:"concurrency"`
	Log         LogConfig     `yaml:"log"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Export      ExportConfig  `yaml:"export"`
}

// OutlierConfig overrides the diameter spike thresholds when non-zero.
type OutlierConfig struct {
	GrowthSpikeCmPerYr  float64 `yaml:"growth_spike_cm_per_yr"`
	DeclineSpikeCmPerYr float64 `yaml:"decline_spike_cm_per_yr"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// ExportConfig controls artifact export after a successful run.
type ExportConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Tables      []string `yaml:"tables"`
	Formats     []string `yaml:"formats"`
	RequestedBy string   `yaml:"requested_by"`
	Reason      string   `yaml:"reason"`
}

func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.SiteID == "" {
		return Config{}, fmt.Errorf("config %s: site_id required", path)
	}
	return cfg, nil
}
