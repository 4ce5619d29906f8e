package component

import (
	"fmt"
	"math"

	"hydromas/internal/optimize"
)

// FrictionMethod selects the head-loss formula a Pipe uses.
type FrictionMethod string

const (
	DarcyWeisbach FrictionMethod = "darcy_weisbach"
	Manning       FrictionMethod = "manning"
)

// Pipe models a closed conduit with either a Darcy-Weisbach or Manning
// friction law, operating in head-driven or flow-driven mode depending
// on which keys are present in the step action.
//
// Grounded on original_source/core_lib/physical_objects/pipe.py.
type Pipe struct {
	id       string
	method   FrictionMethod
	length   float64
	diameter float64

	frictionFactor float64 // Darcy-Weisbach
	manningN       float64 // Manning

	outflow float64
	headLoss float64
}

// NewPipe constructs a Pipe using the given friction method.
func NewPipe(id string, method FrictionMethod, length, diameter, frictionFactor, manningN float64) *Pipe {
	return &Pipe{id: id, method: method, length: length, diameter: diameter, frictionFactor: frictionFactor, manningN: manningN}
}

func (p *Pipe) ID() string { return p.id }

func (p *Pipe) SetInflow(float64) {}

// Step operates in head-driven mode when action carries upstream_head
// and downstream_head, computing outflow from the head difference; in
// flow-driven mode when action carries outflow directly, it computes the
// consistent head loss instead.
func (p *Pipe) Step(action Action, dt float64) (State, error) {
	if outflow, ok := actionFloatPtr(action, "outflow"); ok {
		p.outflow = outflow
		p.headLoss = p.headLossFor(outflow)
	} else {
		upstream := actionFloat(action, "upstream_head", 0)
		downstream := actionFloat(action, "downstream_head", 0)
		headDiff := maxf(0, upstream-downstream)
		p.headLoss = headDiff
		p.outflow = p.outflowFor(headDiff)
	}

	if math.IsNaN(p.outflow) {
		return nil, &NumericFailureError{ComponentID: p.id, Field: "outflow"}
	}
	return p.GetState(), nil
}

func (p *Pipe) area() float64 {
	r := p.diameter / 2
	return math.Pi * r * r
}

// outflowFor computes Q from head loss via the configured friction
// method (inverted to flow since hL = f·(L/D)·(V²/2g) and Q = V·A).
func (p *Pipe) outflowFor(headLoss float64) float64 {
	if headLoss <= 0 || p.length <= 0 || p.diameter <= 0 {
		return 0
	}
	area := p.area()
	switch p.method {
	case Manning:
		// Manning: V = (1/n) R^(2/3) S^(1/2); R ~ D/4 for full pipe.
		hydraulicRadius := p.diameter / 4
		slope := headLoss / p.length
		if p.manningN == 0 {
			return 0
		}
		v := (1 / p.manningN) * math.Pow(hydraulicRadius, 2.0/3.0) * math.Sqrt(maxf(0, slope))
		return v * area
	default: // DarcyWeisbach
		if p.frictionFactor == 0 {
			return 0
		}
		v := math.Sqrt(2 * gravity * headLoss * p.diameter / (p.frictionFactor * p.length))
		return v * area
	}
}

// headLossFor computes the head loss consistent with the given flow.
func (p *Pipe) headLossFor(flow float64) float64 {
	if p.length <= 0 || p.diameter <= 0 {
		return 0
	}
	area := p.area()
	if area == 0 {
		return 0
	}
	v := flow / area
	switch p.method {
	case Manning:
		if p.manningN == 0 {
			return 0
		}
		hydraulicRadius := p.diameter / 4
		slope := math.Pow(v*p.manningN/math.Pow(hydraulicRadius, 2.0/3.0), 2)
		return slope * p.length
	default:
		return p.frictionFactor * (p.length / p.diameter) * (v * v) / (2 * gravity)
	}
}

func (p *Pipe) GetState() State {
	return State{"outflow": p.outflow, "head_loss": p.headLoss}
}

func (p *Pipe) SetState(s State) {
	if v, ok := toFloat(s["outflow"]); ok {
		p.outflow = v
	}
}

func (p *Pipe) GetParameters() Parameters {
	return Parameters{
		"method":          string(p.method),
		"length":          p.length,
		"diameter":        p.diameter,
		"friction_factor": p.frictionFactor,
		"manning_n":       p.manningN,
	}
}

func (p *Pipe) SetParameters(params Parameters) {
	if v, ok := toFloat(params["friction_factor"]); ok {
		p.frictionFactor = v
	}
	if v, ok := toFloat(params["manning_n"]); ok {
		p.manningN = v
	}
}

// IdentifyParameters re-estimates the friction coefficient relevant to
// the configured method via bounded minimization of RMSE against
// observed outflow.
//
// Expected data keys: "head_loss", "observed_outflow".
func (p *Pipe) IdentifyParameters(data map[string][]float64) (Parameters, error) {
	heads := data["head_loss"]
	observed := data["observed_outflow"]
	if len(observed) == 0 || len(heads) != len(observed) {
		return nil, fmt.Errorf("identify pipe %q: insufficient or mismatched samples", p.id)
	}

	var bounds optimize.Bounds
	var x0 float64
	if p.method == Manning {
		bounds = optimize.Bounds{Lo: 0.001, Hi: 0.1}
		x0 = p.manningN
	} else {
		bounds = optimize.Bounds{Lo: 0.001, Hi: 0.5}
		x0 = p.frictionFactor
	}

	objective := func(x []float64) float64 {
		trial := *p
		if p.method == Manning {
			trial.manningN = x[0]
		} else {
			trial.frictionFactor = x[0]
		}
		sumSq := 0.0
		for i := range observed {
			predicted := trial.outflowFor(heads[i])
			sumSq += (predicted - observed[i]) * (predicted - observed[i])
		}
		return math.Sqrt(sumSq / float64(len(observed)))
	}

	res, err := optimize.Minimize(objective, []float64{x0}, []optimize.Bounds{bounds}, optimize.LBFGSB)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("identify pipe %q: optimizer did not converge: %s", p.id, res.Message)
	}
	if p.method == Manning {
		return Parameters{"manning_n": res.X[0]}, nil
	}
	return Parameters{"friction_factor": res.X[0]}, nil
}

func (p *Pipe) UpdateParameters(params Parameters) error {
	p.SetParameters(params)
	return nil
}
