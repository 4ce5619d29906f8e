package component

// WaterTurbine converts a commanded flow rate through a fixed head into
// electrical power at a constant efficiency.
//
// Supplemented beyond spec.md's §4.2 per SPEC_FULL.md §4.2; grounded on
// original_source/core_lib/local_agents/control/custom_controllers.py's
// HydropowerController, which this component pairs with (see
// internal/agent/control.HydropowerController).
const waterDensity = 1000.0 // kg/m^3

type WaterTurbine struct {
	id string

	head       float64
	efficiency float64

	flowRate float64
	power    float64
}

// NewWaterTurbine constructs a WaterTurbine with a fixed head and
// efficiency.
func NewWaterTurbine(id string, head, efficiency float64) *WaterTurbine {
	return &WaterTurbine{id: id, head: head, efficiency: efficiency}
}

func (t *WaterTurbine) ID() string { return t.id }

func (t *WaterTurbine) SetInflow(value float64) { t.flowRate = value }

// Step: the commanded flow rate (from action, falling back to the last
// value set via SetInflow) produces power = rho * g * head * efficiency
// * flow. A control_signal (the harness-routed output of a
// WaterTurbineControlAgent/HydropowerController) is read as the
// commanded flow rate and takes precedence over a direct flow_rate
// command.
func (t *WaterTurbine) Step(action Action, dt float64) (State, error) {
	if signal, ok := actionFloatPtr(action, "control_signal"); ok {
		t.flowRate = signal
	} else if flow, ok := actionFloatPtr(action, "flow_rate"); ok {
		t.flowRate = flow
	}
	t.power = waterDensity * gravity * t.head * t.efficiency * t.flowRate
	return t.GetState(), nil
}

func (t *WaterTurbine) GetState() State {
	return State{"flow_rate": t.flowRate, "power": t.power, "outflow": t.flowRate}
}

func (t *WaterTurbine) SetState(s State) {
	if v, ok := toFloat(s["flow_rate"]); ok {
		t.flowRate = v
	}
}

func (t *WaterTurbine) GetParameters() Parameters {
	return Parameters{"head": t.head, "efficiency": t.efficiency}
}

func (t *WaterTurbine) SetParameters(p Parameters) {
	if v, ok := toFloat(p["head"]); ok {
		t.head = v
	}
	if v, ok := toFloat(p["efficiency"]); ok {
		t.efficiency = v
	}
}
