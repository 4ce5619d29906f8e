package dispatch

import (
	"fmt"

	"hydromas/internal/bus"
	"hydromas/internal/metrics"
)

// AnomalyDetector subscribes to a list of state topics, maintaining the
// latest message per topic, and raises a one-shot PUMP_NO_FLOW alert
// whenever a monitored pump reports status==1 with outflow below
// threshold. The alert clears (and may re-fire) once the condition
// clears.
//
// Grounded on original_source/core_lib/central_coordination/dispatch/central_anomaly_detection_agent.py.
type AnomalyDetector struct {
	bus *bus.Bus

	alertTopic       string
	outflowThreshold float64

	latest       map[string]bus.Message
	activeAlerts map[string]bool
}

// NewAnomalyDetector constructs an AnomalyDetector subscribed to every
// topic in monitoredTopics.
func NewAnomalyDetector(b *bus.Bus, monitoredTopics []string, alertTopic string, outflowThreshold float64) *AnomalyDetector {
	d := &AnomalyDetector{
		bus:              b,
		alertTopic:       alertTopic,
		outflowThreshold: outflowThreshold,
		latest:           make(map[string]bus.Message),
		activeAlerts:     make(map[string]bool),
	}
	for _, topic := range monitoredTopics {
		topic := topic
		b.Subscribe(topic, func(t string, msg bus.Message) error {
			return d.handleState(topic, msg)
		})
	}
	return d
}

func (d *AnomalyDetector) handleState(topic string, msg bus.Message) error {
	d.latest[topic] = msg

	status, _ := toFloat(msg["status"])
	outflow, _ := toFloat(msg["outflow"])
	key := topic + "_no_flow"

	anomalous := status == 1 && outflow < d.outflowThreshold
	if anomalous {
		if !d.activeAlerts[key] {
			d.activeAlerts[key] = true
			metrics.RecordAnomalyAlert("PUMP_NO_FLOW")
			d.bus.Publish(d.alertTopic, bus.Message{
				"anomaly_type": "PUMP_NO_FLOW",
				"source_topic": topic,
				"details":      fmt.Sprintf("status=%v outflow=%v threshold=%v", status, outflow, d.outflowThreshold),
			})
		}
	} else {
		delete(d.activeAlerts, key)
	}
	return nil
}

// Run is a no-op: AnomalyDetector is purely event-driven.
func (d *AnomalyDetector) Run(t float64) error { return nil }
