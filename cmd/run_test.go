package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydromas/internal/config"
)

const minimalConfigYAML = `
simulation:
  duration: 5
  time_step: 1
`

const minimalComponentsYAML = `
- id: tank
  class: Reservoir
  initial_state:
    volume: 1000
  parameters:
    storage_curve_volumes: [0, 10000]
    storage_curve_levels: [0, 10]
`

const minimalTopologyYAML = `[]`

const minimalAgentsYAML = `[]`

func writeMinimalScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"config.yaml":     minimalConfigYAML,
		"components.yaml": minimalComponentsYAML,
		"topology.yaml":   minimalTopologyYAML,
		"agents.yaml":     minimalAgentsYAML,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRunRun_Success(t *testing.T) {
	dir := writeMinimalScenario(t)

	cfg := &config.RuntimeConfig{}
	cfg.Log.Level = "info"
	cfg.Log.Pattern = "[%time] [%level] %msg"
	cfg.Log.Time = "2006-01-02T15:04:05.000Z07:00"
	cfg.Metrics.Enabled = false
	cfg.Scenario.Dir = dir
	cfg.Scenario.Duration = 5
	cfg.Scenario.Dt = 1

	var buf bytes.Buffer
	err := runRun(context.Background(), cfg, &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "completed 5 ticks")
}

func TestRunRun_UnknownScenarioDir(t *testing.T) {
	cfg := &config.RuntimeConfig{}
	cfg.Log.Level = "info"
	cfg.Log.Pattern = "[%time] [%level] %msg"
	cfg.Log.Time = "2006-01-02T15:04:05.000Z07:00"
	cfg.Metrics.Enabled = false
	cfg.Scenario.Dir = filepath.Join(t.TempDir(), "does-not-exist")
	cfg.Scenario.Duration = 5
	cfg.Scenario.Dt = 1

	var buf bytes.Buffer
	err := runRun(context.Background(), cfg, &buf)
	require.Error(t, err)
}
