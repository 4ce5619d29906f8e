// Package dispatch implements the supervisory dispatcher agents: rule
// hysteresis, emergency override, MPC, central anomaly detection, and
// demand forecasting.
package dispatch

import "hydromas/internal/bus"

// RuleDispatcher is a two-threshold hysteresis supervisor: crossing
// below low_level requests the high setpoint, crossing above high_level
// requests the low setpoint, and the mid-band is left alone.
//
// Grounded on original_source/core_lib/central_coordination/dispatch/central_dispatcher.py's
// _run_rule_based.
type RuleDispatcher struct {
	bus *bus.Bus

	observationKey string
	commandTopic   string

	lowLevel, highLevel   float64
	lowSetpoint, highSetpoint float64
}

// NewRuleDispatcher constructs and subscribes a RuleDispatcher to
// stateTopic, publishing setpoint requests to commandTopic.
func NewRuleDispatcher(b *bus.Bus, stateTopic, observationKey, commandTopic string, lowLevel, highLevel, lowSetpoint, highSetpoint float64) *RuleDispatcher {
	d := &RuleDispatcher{
		bus:            b,
		observationKey: observationKey,
		commandTopic:   commandTopic,
		lowLevel:       lowLevel,
		highLevel:      highLevel,
		lowSetpoint:    lowSetpoint,
		highSetpoint:   highSetpoint,
	}
	b.Subscribe(stateTopic, func(topic string, msg bus.Message) error {
		return d.handleState(msg)
	})
	return d
}

func (d *RuleDispatcher) handleState(msg bus.Message) error {
	v, ok := toFloat(msg[d.observationKey])
	if !ok {
		return nil
	}
	switch {
	case v < d.lowLevel:
		d.bus.Publish(d.commandTopic, bus.Message{"new_setpoint": d.highSetpoint})
	case v > d.highLevel:
		d.bus.Publish(d.commandTopic, bus.Message{"new_setpoint": d.lowSetpoint})
	}
	return nil
}

// Run is a no-op: RuleDispatcher is purely event-driven.
func (d *RuleDispatcher) Run(t float64) error { return nil }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
