// Package harness implements the two-phase simulation tick loop: publish
// component states, let agents react, aggregate inflows from the
// previous tick's outflows, step components in topological order, and
// log a snapshot.
package harness

import (
	"fmt"
	"math"
	"strings"
	"time"

	"hydromas/internal/bus"
	"hydromas/internal/component"
	"hydromas/internal/log"
	"hydromas/internal/metrics"
	"hydromas/internal/topology"
)

// Agent is the minimal capability the harness needs to drive
// time-triggered agents; event-driven agents never need Run to do
// anything beyond returning nil (they react to bus publishes instead).
type Agent interface {
	Run(t float64) error
}

// ErrNotBuilt is returned by Run when Build has not succeeded.
var ErrNotBuilt = fmt.Errorf("harness: Build must succeed before Run")

// ComponentCollisionError is returned by AddComponent on a duplicate id.
type ComponentCollisionError struct{ ID string }

func (e *ComponentCollisionError) Error() string {
	return fmt.Sprintf("harness: component %q already added", e.ID)
}

// Snapshot is one tick's recorded state, keyed by component id.
type Snapshot struct {
	Time   float64
	States map[string]component.State
}

// Harness orchestrates the tick loop; it owns components, agents,
// topology and the bus for a single simulation run.
type Harness struct {
	Bus *bus.Bus

	topo       *topology.Topology
	components map[string]component.Simulatable
	agents     []Agent

	history    []Snapshot
	prevStates map[string]map[string]float64

	// actions holds the most recently received control_signal per
	// component id, as routed by SubscribeToAction.
	actions map[string]float64

	built bool
}

// New constructs an empty Harness; it owns its own bus.
func New() *Harness {
	return &Harness{
		Bus:        bus.New(),
		topo:       topology.New(),
		components: make(map[string]component.Simulatable),
		prevStates: make(map[string]map[string]float64),
		actions:    make(map[string]float64),
	}
}

// SubscribeToAction wires an action topic into the tick loop: whenever a
// control_signal is published on topic, it is latched as the commanded
// actuator value for the component named by the topic's final
// slash-separated segment (e.g. "action/outlet_gate" targets
// "outlet_gate"), and injected into that component's action on every Step
// until a new value arrives. This is how published control/dispatch
// commands reach a physical component — without it they are never read.
func (h *Harness) SubscribeToAction(topic string) {
	componentID := topic
	if i := strings.LastIndex(topic, "/"); i >= 0 {
		componentID = topic[i+1:]
	}
	h.Bus.Subscribe(topic, func(_ string, msg bus.Message) error {
		if v, ok := msg["control_signal"]; ok {
			if f, ok := toFloatValue(v); ok {
				h.actions[componentID] = f
			}
		}
		return nil
	})
}

// AddComponent registers a physical component with the harness.
func (h *Harness) AddComponent(c component.Simulatable) error {
	if _, exists := h.components[c.ID()]; exists {
		return &ComponentCollisionError{ID: c.ID()}
	}
	h.components[c.ID()] = c
	h.topo.AddComponent(c.ID())
	h.prevStates[c.ID()] = map[string]float64{"outflow": 0}
	return nil
}

// AddConnection wires an upstream -> downstream edge between two
// previously-added components.
func (h *Harness) AddConnection(upstream, downstream string) error {
	return h.topo.AddConnection(upstream, downstream)
}

// AddAgent registers a time-triggered or event-driven agent. Event-driven
// agents (those that react entirely from bus subscriptions) may
// implement Run as a no-op.
func (h *Harness) AddAgent(a Agent) {
	h.agents = append(h.agents, a)
}

// Component looks up a previously-added component by id.
func (h *Harness) Component(id string) (component.Simulatable, bool) {
	c, ok := h.components[id]
	return c, ok
}

// Build runs the topological sort over the component graph. It must be
// called before Run.
func (h *Harness) Build() error {
	if err := h.topo.Build(); err != nil {
		return err
	}
	h.built = true
	return nil
}

// Run executes ceil(duration/dt) ticks of the two-phase loop.
func (h *Harness) Run(duration, dt float64) error {
	if !h.built {
		return ErrNotBuilt
	}

	steps := int(math.Ceil(duration / dt))
	t := 0.0
	for i := 0; i < steps; i++ {
		if err := h.tick(t, dt); err != nil {
			return fmt.Errorf("harness: tick %d at t=%.3f: %w", i, t, err)
		}
		t += dt
	}
	return nil
}

func (h *Harness) tick(t, dt float64) error {
	start := time.Now()

	// Phase 1: publish every component's current state. Subscribers
	// (perception/control/dispatch agents) run synchronously and may
	// publish actuator commands; a control_signal on a topic registered
	// via SubscribeToAction is latched here and injected into the target
	// component's action at Step.
	for _, id := range h.topo.Order() {
		c := h.components[id]
		h.Bus.Publish("state."+id, toMessage(c.GetState()))
	}

	// Phase 1b: time-triggered agents (dispatchers, CSV injectors,
	// forecasters, identification agents) tick once per simulation step.
	// Agent order is insertion order; agents must not depend on ordering
	// among themselves within a tick, per spec.md §5.
	for _, a := range h.agents {
		if err := a.Run(t); err != nil {
			log.GetLogger().WithField("tick_time", t).Errorf("agent run failure: %v", err)
		}
	}

	// Phase 2: aggregate inflows from the previous tick's outflows, then
	// step every component in topological order.
	inflows := topology.AggregateInflows(h.topo, h.prevStates)

	snapshot := Snapshot{Time: t, States: make(map[string]component.State, len(h.components))}
	nextPrev := make(map[string]map[string]float64, len(h.components))

	for _, id := range h.topo.Order() {
		c := h.components[id]
		c.SetInflow(inflows[id])

		action := h.actionFor(id)
		state, err := c.Step(action, dt)
		if err != nil {
			return fmt.Errorf("component %q: %w", id, err)
		}
		snapshot.States[id] = state
		nextPrev[id] = map[string]float64{"outflow": floatField(state, "outflow")}
	}

	h.prevStates = nextPrev
	h.history = append(h.history, snapshot)

	metrics.ObserveTick(time.Since(start).Seconds())
	metrics.SetComponentCount(len(h.components))
	metrics.SetAgentCount(len(h.agents))

	return nil
}

// actionFor builds the {upstream_head, downstream_head, control_signal}
// action passed to Step; heads come from the first upstream/downstream
// neighbor's current water_level, and control_signal carries the latest
// actuator command latched by SubscribeToAction, if any.
func (h *Harness) actionFor(id string) component.Action {
	action := component.Action{}

	if upstreams := h.topo.Upstream(id); len(upstreams) > 0 {
		if up, ok := h.components[upstreams[0]]; ok {
			action["upstream_head"] = floatField(up.GetState(), "water_level")
		}
	}
	if downstreams := h.topo.Downstream(id); len(downstreams) > 0 {
		if down, ok := h.components[downstreams[0]]; ok {
			action["downstream_head"] = floatField(down.GetState(), "water_level")
		}
	}
	if v, ok := h.actions[id]; ok {
		action["control_signal"] = v
	}
	return action
}

// History returns every tick snapshot recorded so far.
func (h *Harness) History() []Snapshot {
	return h.history
}

func toMessage(s component.State) bus.Message {
	m := make(bus.Message, len(s))
	for k, v := range s {
		m[k] = v
	}
	return m
}

func floatField(s component.State, key string) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toFloatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
