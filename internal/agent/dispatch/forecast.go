package dispatch

import "hydromas/internal/bus"

// DemandForecaster maintains a bounded moving-average window of demand
// samples and, on interval boundaries, publishes a flat forecast of
// length horizonSteps equal to the window mean. Below window size, it
// emits nothing.
//
// Grounded on original_source/core_lib/central_coordination/dispatch/demand_forecasting_agent.py.
type DemandForecaster struct {
	bus *bus.Bus

	forecastTopic string
	windowSize    int
	maxHistory    int
	interval      float64
	horizonSteps  int

	history []float64
}

// NewDemandForecaster constructs a DemandForecaster subscribed to
// dataTopic's "demand" field.
func NewDemandForecaster(b *bus.Bus, dataTopic, forecastTopic string, windowSize, maxHistory int, interval float64, horizonSteps int) *DemandForecaster {
	f := &DemandForecaster{
		bus:           b,
		forecastTopic: forecastTopic,
		windowSize:    windowSize,
		maxHistory:    maxHistory,
		interval:      interval,
		horizonSteps:  horizonSteps,
	}
	b.Subscribe(dataTopic, func(topic string, msg bus.Message) error {
		return f.handleData(msg)
	})
	return f
}

func (f *DemandForecaster) handleData(msg bus.Message) error {
	v, ok := toFloat(msg["demand"])
	if !ok {
		return nil
	}
	f.history = append(f.history, v)
	if len(f.history) > f.maxHistory {
		f.history = f.history[1:]
	}
	return nil
}

// Run triggers a forecast publish on interval boundaries, once the
// window has filled.
func (f *DemandForecaster) Run(t float64) error {
	if f.interval <= 0 || t == 0 || int(t)%int(f.interval) != 0 {
		return nil
	}
	if len(f.history) < f.windowSize {
		return nil
	}

	window := f.history[len(f.history)-f.windowSize:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(len(window))

	values := make([]float64, f.horizonSteps)
	for i := range values {
		values[i] = mean
	}
	f.bus.Publish(f.forecastTopic, bus.Message{"forecast_values": values})
	return nil
}
