package control

// HydropowerController distributes a net power setpoint across N
// turbines, converting power to flow per turbine via
// flow = power / (rho * g * head * efficiency), publishing a
// per-turbine flow command map — exercising LocalControlAgent's
// map-valued, multi-actuator output path.
//
// Supplemented beyond spec.md's §4.6 per SPEC_FULL.md §4.6; grounded on
// original_source/core_lib/local_agents/control/custom_controllers.py.
type HydropowerController struct {
	setpoint float64

	turbineTopics []string
	heads         []float64
	efficiencies  []float64

	density float64
}

// NewHydropowerController constructs a controller over N turbines, each
// with its own head/efficiency and command topic.
func NewHydropowerController(setpoint float64, turbineTopics []string, heads, efficiencies []float64) *HydropowerController {
	return &HydropowerController{
		setpoint:      setpoint,
		turbineTopics: turbineTopics,
		heads:         heads,
		efficiencies:  efficiencies,
		density:       1000.0,
	}
}

func (h *HydropowerController) SetSetpoint(v float64)    { h.setpoint = v }
func (h *HydropowerController) UpdateSetpoint(v float64) { h.setpoint = v }

// Compute splits the net power setpoint evenly across turbines and
// converts each share to a flow command.
func (h *HydropowerController) Compute(processVariable, dt float64) Output {
	n := len(h.turbineTopics)
	if n == 0 {
		return Output{Value: 0}
	}
	share := h.setpoint / float64(n)

	multi := make(map[string]float64, n)
	for i, topic := range h.turbineTopics {
		denom := h.density * 9.81 * h.heads[i] * h.efficiencies[i]
		flow := 0.0
		if denom != 0 {
			flow = share / denom
		}
		multi[topic] = flow
	}
	return Output{Multi: multi}
}

// DirectGateController is a pass-through controller whose control action
// is the observation itself, unchanged — used for open-loop/scripted
// scenarios where the "controller" merely relays a target opening.
type DirectGateController struct {
	setpoint float64
}

// NewDirectGateController constructs a DirectGateController.
func NewDirectGateController() *DirectGateController { return &DirectGateController{} }

func (d *DirectGateController) SetSetpoint(v float64)    { d.setpoint = v }
func (d *DirectGateController) UpdateSetpoint(v float64) { d.setpoint = v }

func (d *DirectGateController) Compute(processVariable, dt float64) Output {
	return Output{Value: processVariable}
}

// JointPIDController wraps a single PID core but splits its output into
// two independently-clamped commands: a pump inflow command and a valve
// outflow command — supplementing spec.md §4.6's map-valued controller
// path with a second concrete example beyond HydropowerController.
type JointPIDController struct {
	pid *PID

	pumpTopic, valveTopic   string
	pumpMin, pumpMax        float64
	valveMin, valveMax      float64
}

// NewJointPIDController constructs a JointPIDController.
func NewJointPIDController(pid *PID, pumpTopic string, pumpMin, pumpMax float64, valveTopic string, valveMin, valveMax float64) *JointPIDController {
	return &JointPIDController{pid: pid, pumpTopic: pumpTopic, pumpMin: pumpMin, pumpMax: pumpMax, valveTopic: valveTopic, valveMin: valveMin, valveMax: valveMax}
}

func (j *JointPIDController) SetSetpoint(v float64)    { j.pid.SetSetpoint(v) }
func (j *JointPIDController) UpdateSetpoint(v float64) { j.pid.UpdateSetpoint(v) }

func (j *JointPIDController) Compute(processVariable, dt float64) Output {
	net := j.pid.Compute(processVariable, dt).Value

	pumpCmd := clamp(maxf(0, net), j.pumpMin, j.pumpMax)
	valveCmd := clamp(maxf(0, -net), j.valveMin, j.valveMax)

	return Output{Multi: map[string]float64{
		j.pumpTopic:  pumpCmd,
		j.valveTopic: valveCmd,
	}}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
