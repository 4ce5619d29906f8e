package control

import "hydromas/internal/bus"

// StepAgent is a degenerate control agent: it publishes one fixed action
// message the first time simulated time reaches actionTime.
//
// Grounded on original_source/core_lib/local_agents/control/step_agent.py.
type StepAgent struct {
	bus        *bus.Bus
	topic      string
	action     bus.Message
	actionTime float64
	sent       bool
}

// NewStepAgent constructs a StepAgent.
func NewStepAgent(b *bus.Bus, topic string, action bus.Message, actionTime float64) *StepAgent {
	return &StepAgent{bus: b, topic: topic, action: action, actionTime: actionTime}
}

func (a *StepAgent) Run(t float64) error {
	if !a.sent && t >= a.actionTime {
		a.bus.Publish(a.topic, a.action)
		a.sent = true
	}
	return nil
}

// ConstantValueAgent publishes a fixed {key: value} message every tick.
//
// Grounded on original_source/core_lib/local_agents/control/constant_value_agent.py.
type ConstantValueAgent struct {
	bus   *bus.Bus
	topic string
	key   string
	value float64
}

// NewConstantValueAgent constructs a ConstantValueAgent.
func NewConstantValueAgent(b *bus.Bus, topic, key string, value float64) *ConstantValueAgent {
	return &ConstantValueAgent{bus: b, topic: topic, key: key, value: value}
}

func (a *ConstantValueAgent) Run(t float64) error {
	a.bus.Publish(a.topic, bus.Message{a.key: a.value})
	return nil
}

// SignalAggregatorAgent sums the last-known value across a set of input
// topics and republishes the total to a single output topic.
//
// Grounded on original_source/core_lib/local_agents/control/signal_aggregator_agent.py.
type SignalAggregatorAgent struct {
	bus         *bus.Bus
	outputTopic string
	key         string

	latest map[string]float64
}

// NewSignalAggregatorAgent constructs a SignalAggregatorAgent subscribed
// to every topic in inputTopics, summing the field named key.
func NewSignalAggregatorAgent(b *bus.Bus, inputTopics []string, key, outputTopic string) *SignalAggregatorAgent {
	a := &SignalAggregatorAgent{bus: b, outputTopic: outputTopic, key: key, latest: make(map[string]float64)}
	for _, topic := range inputTopics {
		topic := topic
		b.Subscribe(topic, func(t string, msg bus.Message) error {
			if v, ok := toFloat(msg[key]); ok {
				a.latest[topic] = v
			}
			return nil
		})
	}
	return a
}

func (a *SignalAggregatorAgent) Run(t float64) error {
	var total float64
	for _, v := range a.latest {
		total += v
	}
	a.bus.Publish(a.outputTopic, bus.Message{a.key: total})
	return nil
}
