// Package perception implements digital-twin agents: they observe a
// single physical component and publish its (optionally smoothed) state
// onto the bus.
package perception

import (
	"fmt"

	"hydromas/internal/bus"
	"hydromas/internal/component"
)

// DigitalTwinAgent mirrors a physical component's state onto the bus
// once per tick, with optional per-key exponential smoothing.
//
// Grounded on original_source/core_lib/local_agents/perception/digital_twin_agent.py.
type DigitalTwinAgent struct {
	id                string
	target            component.Simulatable
	bus               *bus.Bus
	stateTopic        string
	smoothingAlpha    map[string]float64
	smoothed          map[string]float64
}

// New constructs a DigitalTwinAgent observing target and publishing to
// stateTopic. smoothingAlpha maps field name to its EMA alpha; fields not
// present are published unsmoothed.
func New(id string, target component.Simulatable, b *bus.Bus, stateTopic string, smoothingAlpha map[string]float64) *DigitalTwinAgent {
	return &DigitalTwinAgent{
		id:             id,
		target:         target,
		bus:            b,
		stateTopic:     stateTopic,
		smoothingAlpha: smoothingAlpha,
		smoothed:       make(map[string]float64),
	}
}

// Run reads the target's state, applies smoothing, and publishes both
// the full state and a per-field sub-topic for narrow subscribers.
func (a *DigitalTwinAgent) Run(t float64) error {
	raw := a.target.GetState()
	out := bus.Message{}

	for k, v := range raw {
		f, isFloat := toFloat(v)
		if !isFloat {
			out[k] = v
			continue
		}
		if alpha, smoothed := a.smoothingAlpha[k]; smoothed {
			f = a.applySmoothing(k, alpha, f)
		}
		out[k] = f
	}

	a.bus.Publish(a.stateTopic, out)

	for k, v := range out {
		if f, ok := toFloat(v); ok {
			a.bus.Publish(fmt.Sprintf("%s/%s", a.stateTopic, k), bus.Message{"value": f})
		}
	}
	return nil
}

func (a *DigitalTwinAgent) applySmoothing(key string, alpha, raw float64) float64 {
	prev, seen := a.smoothed[key]
	if !seen {
		a.smoothed[key] = raw
		return raw
	}
	next := alpha*raw + (1-alpha)*prev
	a.smoothed[key] = next
	return next
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// GatePerceptionAgent and PumpPerceptionAgent differ from DigitalTwinAgent
// only in their Go type, per spec.md §4.5.
type GatePerceptionAgent struct{ *DigitalTwinAgent }

func NewGatePerceptionAgent(id string, target component.Simulatable, b *bus.Bus, stateTopic string, smoothing map[string]float64) *GatePerceptionAgent {
	return &GatePerceptionAgent{New(id, target, b, stateTopic, smoothing)}
}

type PumpPerceptionAgent struct{ *DigitalTwinAgent }

func NewPumpPerceptionAgent(id string, target component.Simulatable, b *bus.Bus, stateTopic string, smoothing map[string]float64) *PumpPerceptionAgent {
	return &PumpPerceptionAgent{New(id, target, b, stateTopic, smoothing)}
}
