package component

import (
	"math"
)

// Valve models a throttling valve whose effective discharge coefficient
// scales linearly with its opening percentage.
//
// Grounded on original_source/core_lib/physical_objects/valve.py.
type Valve struct {
	id string

	dischargeCoefficient float64
	area                 float64

	openingPercent float64 // 0..100
	outflow        float64
	upstreamInflow float64
	pushThrough    bool // true when upstream explicitly pushes inflow through the valve
}

// NewValve constructs a Valve at the given initial opening percentage.
func NewValve(id string, dischargeCoefficient, area, openingPercent float64) *Valve {
	return &Valve{id: id, dischargeCoefficient: dischargeCoefficient, area: area, openingPercent: clamp(openingPercent, 0, 100)}
}

func (v *Valve) ID() string { return v.id }

func (v *Valve) SetInflow(value float64) {
	v.upstreamInflow = value
	v.pushThrough = true
}

// Step: if opening is commanded in action, apply it — a control_signal
// (the harness-routed output of a ValveControlAgent) takes precedence
// over a direct opening_percent command. If upstream is pushing inflow
// through the valve (SetInflow was called this tick), an open valve
// passes the inflow through unchanged and a closed valve blocks it;
// otherwise outflow is computed from the head difference via the
// orifice formula scaled by effective opening.
func (v *Valve) Step(action Action, dt float64) (State, error) {
	if signal, ok := actionFloatPtr(action, "control_signal"); ok {
		v.openingPercent = clamp(signal, 0, 100)
	} else if opening, ok := actionFloatPtr(action, "opening_percent"); ok {
		v.openingPercent = clamp(opening, 0, 100)
	}

	if v.pushThrough {
		if v.openingPercent > 0 {
			v.outflow = v.upstreamInflow
		} else {
			v.outflow = 0
		}
	} else {
		upstreamHead := actionFloat(action, "upstream_head", 0)
		downstreamHead := actionFloat(action, "downstream_head", 0)
		headDiff := maxf(0, upstreamHead-downstreamHead)
		effectiveC := v.dischargeCoefficient * (v.openingPercent / 100)
		v.outflow = effectiveC * v.area * math.Sqrt(2*gravity*headDiff)
	}

	v.pushThrough = false
	if math.IsNaN(v.outflow) {
		return nil, &NumericFailureError{ComponentID: v.id, Field: "outflow"}
	}
	return v.GetState(), nil
}

func (v *Valve) GetState() State {
	return State{"opening_percent": v.openingPercent, "outflow": v.outflow}
}

func (v *Valve) SetState(s State) {
	if val, ok := toFloat(s["opening_percent"]); ok {
		v.openingPercent = clamp(val, 0, 100)
	}
	if val, ok := toFloat(s["outflow"]); ok {
		v.outflow = val
	}
}

func (v *Valve) GetParameters() Parameters {
	return Parameters{"discharge_coefficient": v.dischargeCoefficient, "area": v.area}
}

func (v *Valve) SetParameters(p Parameters) {
	if val, ok := toFloat(p["discharge_coefficient"]); ok {
		v.dischargeCoefficient = val
	}
	if val, ok := toFloat(p["area"]); ok {
		v.area = val
	}
}

// IdentifyParameters estimates the discharge coefficient directly as the
// mean of per-sample estimates over valid samples (positive head
// difference and positive opening) — no iterative optimizer is needed
// for this closed-form estimator.
//
// Expected data keys: "head_diff", "opening_percent", "observed_outflow".
func (v *Valve) IdentifyParameters(data map[string][]float64) (Parameters, error) {
	heads := data["head_diff"]
	openings := data["opening_percent"]
	observed := data["observed_outflow"]

	var sum float64
	var count int
	for i := range observed {
		if i >= len(heads) || i >= len(openings) {
			break
		}
		if heads[i] <= 0 || openings[i] <= 0 {
			continue
		}
		denom := (openings[i] / 100) * v.area * math.Sqrt(2*gravity*heads[i])
		if denom == 0 {
			continue
		}
		sum += observed[i] / denom
		count++
	}
	if count == 0 {
		return v.GetParameters(), nil
	}
	return Parameters{"discharge_coefficient": sum / float64(count)}, nil
}

func (v *Valve) UpdateParameters(p Parameters) error {
	v.SetParameters(p)
	return nil
}

// ValveStation aggregates the outflow of several valves sharing a single
// upstream source; it has no internal state of its own (is_stateful =
// false in the source).
type ValveStation struct {
	id     string
	valves []*Valve
}

// NewValveStation groups valves under a single id.
func NewValveStation(id string, valves ...*Valve) *ValveStation {
	return &ValveStation{id: id, valves: valves}
}

func (s *ValveStation) ID() string { return s.id }

func (s *ValveStation) SetInflow(value float64) {
	share := value / float64(maxInt(1, len(s.valves)))
	for _, v := range s.valves {
		v.SetInflow(share)
	}
}

func (s *ValveStation) Step(action Action, dt float64) (State, error) {
	var total float64
	for _, v := range s.valves {
		st, err := v.Step(action, dt)
		if err != nil {
			return nil, err
		}
		total += st["outflow"].(float64)
	}
	return State{"outflow": total}, nil
}

func (s *ValveStation) GetState() State { return State{"outflow": s.totalOutflow()} }

func (s *ValveStation) totalOutflow() float64 {
	var total float64
	for _, v := range s.valves {
		total += v.outflow
	}
	return total
}

func (s *ValveStation) SetState(State)            {}
func (s *ValveStation) GetParameters() Parameters { return Parameters{} }
func (s *ValveStation) SetParameters(Parameters)  {}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
