package control

import (
	"hydromas/internal/bus"
)

// LocalControlAgent wires a pure Controller to the bus: it subscribes to
// an observation topic (and optionally a command topic for setpoint
// updates, and a feedback topic for actuator state), computes a control
// action on every observation, and publishes it.
//
// Grounded on original_source/core_lib/local_agents/control/local_control_agent.py.
type LocalControlAgent struct {
	id         string
	controller Controller
	bus        *bus.Bus

	observationKey string
	actionTopic    string
	dt             float64
}

// Config bundles LocalControlAgent's wiring.
type Config struct {
	ID               string
	Controller       Controller
	Bus              *bus.Bus
	ObservationTopic string
	ObservationKey   string // empty means: read the message's "process_variable" field (zero if absent or non-numeric)
	CommandTopic     string // optional
	FeedbackTopic    string // optional
	ActionTopic      string
	Dt               float64
}

// NewLocalControlAgent constructs and wires a LocalControlAgent per cfg.
func NewLocalControlAgent(cfg Config) *LocalControlAgent {
	a := &LocalControlAgent{
		id:             cfg.ID,
		controller:     cfg.Controller,
		bus:            cfg.Bus,
		observationKey: cfg.ObservationKey,
		actionTopic:    cfg.ActionTopic,
		dt:             cfg.Dt,
	}

	cfg.Bus.Subscribe(cfg.ObservationTopic, func(topic string, msg bus.Message) error {
		return a.handleObservation(msg)
	})

	if cfg.CommandTopic != "" {
		cfg.Bus.Subscribe(cfg.CommandTopic, func(topic string, msg bus.Message) error {
			return a.handleCommand(msg)
		})
	}

	if cfg.FeedbackTopic != "" {
		cfg.Bus.Subscribe(cfg.FeedbackTopic, func(topic string, msg bus.Message) error {
			return nil
		})
	}

	return a
}

func (a *LocalControlAgent) handleObservation(msg bus.Message) error {
	var pv float64
	if a.observationKey != "" {
		if v, ok := toFloat(msg[a.observationKey]); ok {
			pv = v
		}
	} else if v, ok := toFloat(msg["process_variable"]); ok {
		pv = v
	}

	out := a.controller.Compute(pv, a.dt)
	a.publishAction(out)
	return nil
}

func (a *LocalControlAgent) handleCommand(msg bus.Message) error {
	if v, ok := toFloat(msg["update_setpoint"]); ok {
		a.controller.UpdateSetpoint(v)
		return nil
	}
	if v, ok := toFloat(msg["set_setpoint"]); ok {
		a.controller.SetSetpoint(v)
		return nil
	}
	if v, ok := toFloat(msg["new_setpoint"]); ok {
		a.controller.UpdateSetpoint(v)
	}
	return nil
}

func (a *LocalControlAgent) publishAction(out Output) {
	if out.Multi != nil {
		for topic, v := range out.Multi {
			a.bus.Publish(topic, bus.Message{"control_signal": v})
		}
		return
	}
	a.bus.Publish(a.actionTopic, bus.Message{"control_signal": out.Value})
}

// Run is a no-op: LocalControlAgent is purely event-driven, reacting to
// bus publishes rather than the harness's time-triggered tick.
func (a *LocalControlAgent) Run(t float64) error { return nil }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// GateControlAgent, ValveControlAgent and WaterTurbineControlAgent are
// constructor facades over LocalControlAgent, differing only in their Go
// type, per spec.md §4.6.
type GateControlAgent struct{ *LocalControlAgent }

func NewGateControlAgent(cfg Config) *GateControlAgent { return &GateControlAgent{NewLocalControlAgent(cfg)} }

type ValveControlAgent struct{ *LocalControlAgent }

func NewValveControlAgent(cfg Config) *ValveControlAgent { return &ValveControlAgent{NewLocalControlAgent(cfg)} }

type WaterTurbineControlAgent struct{ *LocalControlAgent }

func NewWaterTurbineControlAgent(cfg Config) *WaterTurbineControlAgent {
	return &WaterTurbineControlAgent{NewLocalControlAgent(cfg)}
}
