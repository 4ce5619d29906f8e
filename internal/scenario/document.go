// Package scenario implements the declarative scenario loader (C9):
// four YAML documents describing simulation timing, physical
// components, their topology, and the agents that observe/control
// them, assembled into a ready-to-run harness.Harness.
//
// Grounded on the teacher's internal/otus/boot bootstrap construction
// ordering (init → register → construct → wire → boot) and
// original_source's scenario-driven example runners
// (swp/examples/example_parameter_identification.py and siblings).
package scenario

// simulationDoc is config.yaml: global timing.
type simulationDoc struct {
	Simulation struct {
		Duration float64 `yaml:"duration"`
		TimeStep float64 `yaml:"time_step"`
	} `yaml:"simulation"`
}

// componentSpec is one entry of components.yaml.
type componentSpec struct {
	ID           string                 `yaml:"id"`
	Class        string                 `yaml:"class"`
	InitialState map[string]interface{} `yaml:"initial_state"`
	Parameters   map[string]interface{} `yaml:"parameters"`
	InflowTopic  string                 `yaml:"inflow_topic"`
}

// edgeSpec is one entry of topology.yaml.
type edgeSpec struct {
	Upstream   string `yaml:"upstream"`
	Downstream string `yaml:"downstream"`
}

// agentSpec is one entry of agents.yaml. Config is deliberately
// map[string]interface{} rather than a fixed struct: its shape depends
// on Class, and may itself embed nested {class, config} objects (e.g. a
// controller) that are instantiated recursively by buildController.
type agentSpec struct {
	ID     string                 `yaml:"id"`
	Class  string                 `yaml:"class"`
	Config map[string]interface{} `yaml:"config"`
}

// classConfig is the shape of any nested {class, config} object —
// controllers, and any future recursively-instantiated value.
type classConfig struct {
	Class  string                 `yaml:"class"`
	Config map[string]interface{} `yaml:"config"`
}

func getFloat(m map[string]interface{}, key string, def float64) float64 {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

func getString(m map[string]interface{}, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func getBool(m map[string]interface{}, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func getInt(m map[string]interface{}, key string, def int) int {
	return int(getFloat(m, key, float64(def)))
}

func getFloatSlice(m map[string]interface{}, key string) []float64 {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

func getStringSlice(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
