// Package config loads optional defaults for diff_trades from a YAML file
// and layers environment variable overrides on top, mirroring the file-then-env
// precedence the rest of this codebase uses. CLI flags, applied by the
// caller, take precedence over both.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for diff_trades.
type Config struct {
	Reconcile Reconcile `yaml:"reconcile"`
	Logging   Logging   `yaml:"logging"`
	Output    Output    `yaml:"output"`
}

// Reconcile holds the reconciliation tunables from the CLI surface (§6).
type Reconcile struct {
	MaxSkewSeconds     int      `yaml:"max_skew_seconds"`
	ExtremeSkewSeconds int      `yaml:"extreme_skew_seconds"`
	Fields             []string `yaml:"fields"`
	IncludeDetails     bool     `yaml:"include_details"`
}

// Logging configures the run's structured logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Output configures the optional durable sinks alongside the mandatory
// stdout discrepancy stream: a SQLite audit table and a per-run Parquet
// archive.
type Output struct {
	AuditDB    string `yaml:"audit_db"`
	ArchiveDir string `yaml:"archive_dir"`
	TUI        bool   `yaml:"tui"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the CLI surface's documented defaults (§6).
func Default() *Config {
	return &Config{
		Reconcile: Reconcile{
			MaxSkewSeconds:     900,
			ExtremeSkewSeconds: 3600,
			Fields:             []string{"symbol", "price", "quantity"},
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the YAML configuration file at path over top of Default, then
// applies environment variable overrides. An empty path returns the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DIFF_TRADES_MAX_SKEW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reconcile.MaxSkewSeconds = n
		}
	}

	if v := os.Getenv("DIFF_TRADES_EXTREME_SKEW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reconcile.ExtremeSkewSeconds = n
		}
	}

	if v := os.Getenv("DIFF_TRADES_RECONCILE_FIELDS"); v != "" {
		cfg.Reconcile.Fields = strings.Split(v, ",")
	}

	if v := os.Getenv("DIFF_TRADES_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
