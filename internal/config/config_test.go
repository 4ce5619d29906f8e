package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTmpConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	return p
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
hydromas:
  log:
    level: "debug"
  metrics:
    enabled: true
    listen: "0.0.0.0:9090"
  scenario:
    dir: "./scenarios/demo"
    duration: 7200
    dt: 2
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Metrics.Listen != "0.0.0.0:9090" {
		t.Errorf("Metrics.Listen = %q", cfg.Metrics.Listen)
	}
	if cfg.Scenario.Dir != "./scenarios/demo" {
		t.Errorf("Scenario.Dir = %q", cfg.Scenario.Dir)
	}
	if cfg.Scenario.Duration != 7200 {
		t.Errorf("Scenario.Duration = %v, want 7200", cfg.Scenario.Duration)
	}
	if cfg.Scenario.Dt != 2 {
		t.Errorf("Scenario.Dt = %v, want 2", cfg.Scenario.Dt)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
hydromas:
  log:
    level: "invalid"
  scenario:
    dir: "./scenarios/demo"
`))
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("error = %v, want 'invalid log level'", err)
	}
}

func TestLoadRequiresScenarioDir(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
hydromas:
  log:
    level: "info"
`))
	if err == nil {
		t.Fatal("expected error for missing scenario.dir")
	}
	if !strings.Contains(err.Error(), "scenario.dir") {
		t.Errorf("error = %v, want mention of scenario.dir", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
hydromas:
  scenario:
    dir: "./scenarios/demo"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Metrics.Listen != ":9091" {
		t.Errorf("Metrics.Listen = %q, want :9091", cfg.Metrics.Listen)
	}
	if cfg.Scenario.Dt != 1.0 {
		t.Errorf("Scenario.Dt = %v, want 1.0", cfg.Scenario.Dt)
	}
	if cfg.Scenario.Duration != 3600.0 {
		t.Errorf("Scenario.Duration = %v, want 3600.0", cfg.Scenario.Duration)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HYDROMAS_LOG_LEVEL", "debug")

	cfg, err := Load(writeTmpConfig(t, `
hydromas:
  log:
    level: "info"
  scenario:
    dir: "./scenarios/demo"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug (from env)", cfg.Log.Level)
	}
}
