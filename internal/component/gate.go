package component

import (
	"fmt"
	"math"

	"hydromas/internal/optimize"
)

// Gate models a sluice gate governed by the orifice equation.
//
// Grounded on original_source/core_lib/physical_objects/gate.py.
type Gate struct {
	id string

	dischargeCoefficient float64
	width                float64
	maxOpening           float64
	maxRateOfChange      float64

	opening       float64
	targetOpening float64
	outflow       float64
	lastHeadDiff  float64
}

// NewGate constructs a Gate at the given initial opening.
func NewGate(id string, initialOpening, dischargeCoefficient, width, maxOpening, maxRateOfChange float64) *Gate {
	return &Gate{
		id:                   id,
		dischargeCoefficient: dischargeCoefficient,
		width:                width,
		maxOpening:           maxOpening,
		maxRateOfChange:      maxRateOfChange,
		opening:              clamp(initialOpening, 0, maxOpening),
		targetOpening:        clamp(initialOpening, 0, maxOpening),
	}
}

func (g *Gate) ID() string { return g.id }

func (g *Gate) SetInflow(float64) {} // gates do not accumulate inflow; flow is head-driven

// Step moves the opening toward targetOpening at a rate bounded by
// maxRateOfChange*dt, then computes outflow via the orifice equation
// from the upstream/downstream heads carried in action. A control_signal
// (the harness-routed output of a LocalControlAgent/GateControlAgent) is
// read as the target opening directly and takes precedence; a
// gate_target_outflow command inverts the orifice formula against the
// last observed head to pick a target opening instead.
func (g *Gate) Step(action Action, dt float64) (State, error) {
	if signal, ok := actionFloatPtr(action, "control_signal"); ok {
		g.targetOpening = clamp(signal, 0, g.maxOpening)
	} else if targetOutflow, ok := actionFloatPtr(action, "gate_target_outflow"); ok {
		g.targetOpening = g.openingForOutflow(targetOutflow)
	} else if target, ok := actionFloatPtr(action, "target_opening"); ok {
		g.targetOpening = clamp(target, 0, g.maxOpening)
	}

	maxStep := g.maxRateOfChange * dt
	delta := clamp(g.targetOpening-g.opening, -maxStep, maxStep)
	g.opening = clamp(g.opening+delta, 0, g.maxOpening)

	upstreamHead := actionFloat(action, "upstream_head", 0)
	downstreamHead := actionFloat(action, "downstream_head", 0)
	headDiff := maxf(0, upstreamHead-downstreamHead)
	g.lastHeadDiff = headDiff

	g.outflow = g.dischargeCoefficient * (g.opening * g.width) * math.Sqrt(2*gravity*headDiff)

	if math.IsNaN(g.outflow) {
		return nil, &NumericFailureError{ComponentID: g.id, Field: "outflow"}
	}
	return g.GetState(), nil
}

// openingForOutflow inverts the orifice equation against the last
// observed head difference to find the opening that would produce the
// requested outflow.
func (g *Gate) openingForOutflow(targetOutflow float64) float64 {
	if g.lastHeadDiff <= 0 || g.dischargeCoefficient == 0 || g.width == 0 {
		return g.opening
	}
	denom := g.dischargeCoefficient * g.width * math.Sqrt(2*gravity*g.lastHeadDiff)
	if denom == 0 {
		return g.opening
	}
	return clamp(targetOutflow/denom, 0, g.maxOpening)
}

func (g *Gate) GetState() State {
	return State{"opening": g.opening, "outflow": g.outflow}
}

func (g *Gate) SetState(s State) {
	if v, ok := toFloat(s["opening"]); ok {
		g.opening = clamp(v, 0, g.maxOpening)
	}
	if v, ok := toFloat(s["outflow"]); ok {
		g.outflow = v
	}
}

func (g *Gate) GetParameters() Parameters {
	return Parameters{
		"discharge_coefficient": g.dischargeCoefficient,
		"width":                 g.width,
		"max_opening":           g.maxOpening,
		"max_rate_of_change":    g.maxRateOfChange,
	}
}

func (g *Gate) SetParameters(p Parameters) {
	if v, ok := toFloat(p["discharge_coefficient"]); ok {
		g.dischargeCoefficient = v
	}
	if v, ok := toFloat(p["width"]); ok {
		g.width = v
	}
	if v, ok := toFloat(p["max_opening"]); ok {
		g.maxOpening = v
	}
	if v, ok := toFloat(p["max_rate_of_change"]); ok {
		g.maxRateOfChange = v
	}
}

// IdentifyParameters re-estimates the discharge coefficient via
// Nelder-Mead over [0.1, 1.0], minimizing RMSE of outflow predicted by
// the orifice equation against observed outflow.
//
// Expected data keys: "head_diff", "opening", "observed_outflow".
func (g *Gate) IdentifyParameters(data map[string][]float64) (Parameters, error) {
	heads := data["head_diff"]
	openings := data["opening"]
	observed := data["observed_outflow"]
	if len(observed) == 0 || len(heads) != len(observed) || len(openings) != len(observed) {
		return nil, fmt.Errorf("identify gate %q: insufficient or mismatched samples", g.id)
	}

	objective := func(x []float64) float64 {
		c := x[0]
		sumSq := 0.0
		for i := range observed {
			predicted := c * (openings[i] * g.width) * math.Sqrt(2*gravity*maxf(0, heads[i]))
			sumSq += (predicted - observed[i]) * (predicted - observed[i])
		}
		return math.Sqrt(sumSq / float64(len(observed)))
	}

	res, err := optimize.Minimize(objective, []float64{g.dischargeCoefficient}, []optimize.Bounds{{Lo: 0.1, Hi: 1.0}}, optimize.NelderMead)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("identify gate %q: optimizer did not converge: %s", g.id, res.Message)
	}
	return Parameters{"discharge_coefficient": res.X[0]}, nil
}

func (g *Gate) UpdateParameters(p Parameters) error {
	g.SetParameters(p)
	return nil
}
