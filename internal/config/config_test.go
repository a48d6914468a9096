package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	yamlContent := []byte(`
reconcile:
  max_skew_seconds: 120
  extreme_skew_seconds: 1800
  fields:
    - symbol
    - price
  include_details: true
logging:
  level: "debug"
output:
  audit_db: "/tmp/diff_trades/audit.db"
  archive_dir: "/tmp/diff_trades/archive"
  tui: false
`)

	tmpFile, err := os.CreateTemp("", "diff-trades-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	os.Unsetenv("DIFF_TRADES_MAX_SKEW_SECONDS")
	os.Unsetenv("DIFF_TRADES_EXTREME_SKEW_SECONDS")
	os.Unsetenv("DIFF_TRADES_RECONCILE_FIELDS")
	os.Unsetenv("DIFF_TRADES_LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Reconcile.MaxSkewSeconds != 120 {
		t.Errorf("Reconcile.MaxSkewSeconds = %d, want %d", cfg.Reconcile.MaxSkewSeconds, 120)
	}
	if cfg.Reconcile.ExtremeSkewSeconds != 1800 {
		t.Errorf("Reconcile.ExtremeSkewSeconds = %d, want %d", cfg.Reconcile.ExtremeSkewSeconds, 1800)
	}
	if len(cfg.Reconcile.Fields) != 2 || cfg.Reconcile.Fields[0] != "symbol" || cfg.Reconcile.Fields[1] != "price" {
		t.Errorf("Reconcile.Fields = %v, want [symbol price]", cfg.Reconcile.Fields)
	}
	if !cfg.Reconcile.IncludeDetails {
		t.Error("Reconcile.IncludeDetails = false, want true")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	if cfg.Output.AuditDB != "/tmp/diff_trades/audit.db" {
		t.Errorf("Output.AuditDB = %q, want %q", cfg.Output.AuditDB, "/tmp/diff_trades/audit.db")
	}
	if cfg.Output.ArchiveDir != "/tmp/diff_trades/archive" {
		t.Errorf("Output.ArchiveDir = %q, want %q", cfg.Output.ArchiveDir, "/tmp/diff_trades/archive")
	}
	if cfg.Output.TUI {
		t.Error("Output.TUI = true, want false")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	os.Unsetenv("DIFF_TRADES_MAX_SKEW_SECONDS")
	os.Unsetenv("DIFF_TRADES_EXTREME_SKEW_SECONDS")
	os.Unsetenv("DIFF_TRADES_RECONCILE_FIELDS")
	os.Unsetenv("DIFF_TRADES_LOG_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Reconcile.MaxSkewSeconds != 900 {
		t.Errorf("Reconcile.MaxSkewSeconds = %d, want %d", cfg.Reconcile.MaxSkewSeconds, 900)
	}
	if cfg.Reconcile.ExtremeSkewSeconds != 3600 {
		t.Errorf("Reconcile.ExtremeSkewSeconds = %d, want %d", cfg.Reconcile.ExtremeSkewSeconds, 3600)
	}
	want := []string{"symbol", "price", "quantity"}
	if len(cfg.Reconcile.Fields) != len(want) {
		t.Fatalf("Reconcile.Fields = %v, want %v", cfg.Reconcile.Fields, want)
	}
	for i := range want {
		if cfg.Reconcile.Fields[i] != want[i] {
			t.Errorf("Reconcile.Fields[%d] = %q, want %q", i, cfg.Reconcile.Fields[i], want[i])
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
reconcile:
  max_skew_seconds: 120
  fields:
    - symbol
logging:
  level: "debug"
`)

	tmpFile, err := os.CreateTemp("", "diff-trades-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Setenv("DIFF_TRADES_MAX_SKEW_SECONDS", "60")
	os.Setenv("DIFF_TRADES_RECONCILE_FIELDS", "symbol,price,quantity,venue")
	os.Unsetenv("DIFF_TRADES_EXTREME_SKEW_SECONDS")
	os.Unsetenv("DIFF_TRADES_LOG_LEVEL")
	defer os.Unsetenv("DIFF_TRADES_MAX_SKEW_SECONDS")
	defer os.Unsetenv("DIFF_TRADES_RECONCILE_FIELDS")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Reconcile.MaxSkewSeconds != 60 {
		t.Errorf("Reconcile.MaxSkewSeconds = %d, want %d (env override)", cfg.Reconcile.MaxSkewSeconds, 60)
	}
	want := []string{"symbol", "price", "quantity", "venue"}
	if len(cfg.Reconcile.Fields) != len(want) {
		t.Fatalf("Reconcile.Fields = %v, want %v (env override)", cfg.Reconcile.Fields, want)
	}
	for i := range want {
		if cfg.Reconcile.Fields[i] != want[i] {
			t.Errorf("Reconcile.Fields[%d] = %q, want %q", i, cfg.Reconcile.Fields[i], want[i])
		}
	}
	// Logging.Level should remain from YAML since no env override was set.
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q (from YAML)", cfg.Logging.Level, "debug")
	}
}
