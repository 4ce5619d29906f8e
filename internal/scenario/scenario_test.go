package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
simulation:
  duration: 20
  time_step: 1
`

const testComponentsYAML = `
- id: headworks
  class: Reservoir
  initial_state:
    volume: 50000
  parameters:
    storage_curve_volumes: [0, 100000, 200000]
    storage_curve_levels: [0, 5, 10]
  inflow_topic: inflow/headworks

- id: outlet_gate
  class: Gate
  initial_state:
    opening: 0.5
  parameters:
    discharge_coefficient: 0.61
    width: 2
    max_opening: 1
    max_rate_of_change: 0.1

- id: main_canal
  class: Canal
  initial_state:
    water_level: 1
  parameters:
    model_type: integral
    surface_area: 400
    discharge_k: 1.2
`

const testTopologyYAML = `
- upstream: headworks
  downstream: outlet_gate
- upstream: outlet_gate
  downstream: main_canal
`

const testAgentsYAML = `
- id: gate_controller
  class: GateControlAgent
  config:
    observation_topic: state.headworks
    observation_key: water_level
    command_topic: command/outlet_gate
    action_topic: action/outlet_gate
    controller:
      class: PID
      config:
        kp: 0.2
        ki: 0.01
        kd: 0.0
        setpoint: 5
        out_min: 0
        out_max: 1

- id: dispatcher
  class: CentralDispatcherAgent
  config:
    mode: rule
    state_topic: state.headworks
    observation_key: water_level
    command_topic: command/outlet_gate
    low_level: 2
    high_level: 8
    low_setpoint: 0.2
    high_setpoint: 0.8

- id: headworks_twin
  class: DigitalTwinAgent
  config:
    simulated_object_id: headworks
    state_topic: twin/headworks
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"config.yaml":     testConfigYAML,
		"components.yaml": testComponentsYAML,
		"topology.yaml":   testTopologyYAML,
		"agents.yaml":     testAgentsYAML,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadBuildsRunnableHarness(t *testing.T) {
	dir := writeFixture(t)

	h, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, h)

	_, ok := h.Component("headworks")
	assert.True(t, ok)
	_, ok = h.Component("main_canal")
	assert.True(t, ok)

	require.NoError(t, h.Run(5, 1))
	assert.Len(t, h.History(), 5)
}

func TestLoadUnknownComponentClass(t *testing.T) {
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "components.yaml"), []byte(`
- id: bogus
  class: Teleporter
`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	var unknown *UnknownClassError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "component", unknown.Kind)
}

func TestLoadMissingReference(t *testing.T) {
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents.yaml"), []byte(`
- id: twin
  class: DigitalTwinAgent
  config:
    simulated_object_id: does_not_exist
    state_topic: twin/nothing
`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	var missing *MissingReferenceError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "does_not_exist", missing.ID)
}

func TestLoadMissingDocument(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestLoadRejectsInflowTopicOnUnsupportedClass(t *testing.T) {
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "components.yaml"), []byte(`
- id: outlet_gate
  class: Gate
  inflow_topic: inflow/outlet_gate
`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}
