package dispatch

import (
	"hydromas/internal/bus"
	"hydromas/internal/component"
)

// EmergencyDispatcher holds a direct reference to a reservoir model
// rather than subscribing to its state topic — the asymmetry documented
// in spec.md §9's Open Questions and preserved unchanged per
// SPEC_FULL.md's Open Question decision 2. While the reservoir's level
// exceeds emergencyFloodLevel, it publishes a forced
// {control_signal: 0.0} override every tick (idempotent while the
// condition holds).
//
// Grounded on original_source/core_lib/central_coordination/dispatch/central_dispatcher.py's
// _run_emergency.
type EmergencyDispatcher struct {
	bus       *bus.Bus
	reservoir component.Simulatable

	commandTopic        string
	emergencyFloodLevel float64
}

// NewEmergencyDispatcher constructs an EmergencyDispatcher watching
// reservoir directly.
func NewEmergencyDispatcher(b *bus.Bus, reservoir component.Simulatable, commandTopic string, emergencyFloodLevel float64) *EmergencyDispatcher {
	return &EmergencyDispatcher{bus: b, reservoir: reservoir, commandTopic: commandTopic, emergencyFloodLevel: emergencyFloodLevel}
}

// Run is called once per tick by the harness (time-triggered, not
// event-driven) since it must observe the reservoir directly rather than
// wait for a publish.
func (e *EmergencyDispatcher) Run(t float64) error {
	level, ok := toFloat(e.reservoir.GetState()["water_level"])
	if !ok {
		return nil
	}
	if level > e.emergencyFloodLevel {
		e.bus.Publish(e.commandTopic, bus.Message{"control_signal": 0.0})
	}
	return nil
}
