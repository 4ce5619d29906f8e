// Package control implements event-driven local controllers: a
// dt-aware, anti-windup PID core wired to the bus by LocalControlAgent,
// plus a handful of specialized and utility agents.
package control

// Output is a controller's result for one observation: either a single
// scalar (published as {control_signal: Value} on action_topic) or a
// map of per-topic values (published individually — used by
// multi-actuator controllers).
type Output struct {
	Multi map[string]float64
	Value float64
}

// Controller is the pure control-law contract a LocalControlAgent wires
// to the bus.
type Controller interface {
	Compute(processVariable, dt float64) Output
	SetSetpoint(v float64)
	UpdateSetpoint(v float64)
}

// PID is a standard P+I+D controller with derivative-on-error,
// time-aware integration (scaled by actual dt), and integral anti-windup
// via output clamping: the integral term freezes while the output would
// saturate.
//
// This dt-aware, anti-windup behavior is the spec's normative target
// (spec.md §4.6, §8); neither PID variant found in original_source
// implements anti-windup or scales its terms by dt — see DESIGN.md's
// Open Question decision for why this implementation diverges from both.
type PID struct {
	kp, ki, kd float64
	setpoint   float64
	outMin, outMax float64

	integral    float64
	prevError   float64
	hasPrevErr  bool
}

// NewPID constructs a PID controller clamped to [outMin, outMax].
func NewPID(kp, ki, kd, setpoint, outMin, outMax float64) *PID {
	return &PID{kp: kp, ki: ki, kd: kd, setpoint: setpoint, outMin: outMin, outMax: outMax}
}

// SetSetpoint resets the integral and previous error to avoid a bump
// when the setpoint changes abruptly.
func (p *PID) SetSetpoint(v float64) {
	p.setpoint = v
	p.integral = 0
	p.hasPrevErr = false
}

// UpdateSetpoint changes the setpoint without resetting accumulated
// state — used for smooth setpoint ramps.
func (p *PID) UpdateSetpoint(v float64) {
	p.setpoint = v
}

// Compute advances the controller by dt given the latest process
// variable, returning the clamped control signal.
func (p *PID) Compute(processVariable, dt float64) Output {
	if dt <= 0 {
		dt = 1
	}
	err := p.setpoint - processVariable

	candidateIntegral := p.integral + err*dt
	derivative := 0.0
	if p.hasPrevErr {
		derivative = (err - p.prevError) / dt
	}

	unclamped := p.kp*err + p.ki*candidateIntegral + p.kd*derivative
	output := clamp(unclamped, p.outMin, p.outMax)

	// Anti-windup: only commit the integral update when the output is
	// not saturated; freeze it while saturated so the integral term
	// cannot wind up further.
	if output == unclamped {
		p.integral = candidateIntegral
	}

	p.prevError = err
	p.hasPrevErr = true

	return Output{Value: output}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
