package dispatch

import (
	"hydromas/internal/bus"
	"hydromas/internal/log"
	"hydromas/internal/metrics"
	"hydromas/internal/optimize"
)

const mpcEpsilon = 1e-6

// MPCConfig bundles an MPCDispatcher's wiring and cost weights. Slices
// are indexed consistently across canals: StateTopics[j] reports the
// level of the same canal commanded via CommandTopics[j], with
// NormalSetpoints[j], FloodLevels[j], Areas[j] and OutflowCoeffs[j]
// describing that canal.
type MPCConfig struct {
	Bus *bus.Bus

	StateTopics   []string
	CommandTopics []string
	ForecastTopic string

	Horizon         int
	NormalSetpoints []float64
	EmergencySetpoint float64
	FloodLevels     []float64
	Areas           []float64
	OutflowCoeffs   []float64

	QWeight, RWeight float64
	Dt               float64
}

// MPCDispatcher optimizes a control sequence over a finite horizon of
// serial canal pools and applies only the first step, repeating every
// tick — classic MPC. On optimizer failure it falls back to the nominal
// setpoints and logs a warning; it never blocks and never panics.
//
// Grounded on original_source/core_lib/central_coordination/dispatch/central_dispatcher.py's
// _run_mpc / _objective_function / _handle_forecast_message.
type MPCDispatcher struct {
	cfg MPCConfig

	levels       []float64
	levelsKnown  []bool
	forecast     []float64
	lastAppliedU []float64
}

// NewMPCDispatcher constructs and wires an MPCDispatcher per cfg.
func NewMPCDispatcher(cfg MPCConfig) *MPCDispatcher {
	n := len(cfg.StateTopics)
	d := &MPCDispatcher{
		cfg:          cfg,
		levels:       make([]float64, n),
		levelsKnown:  make([]bool, n),
		lastAppliedU: append([]float64(nil), cfg.NormalSetpoints...),
	}

	for i, topic := range cfg.StateTopics {
		i := i
		cfg.Bus.Subscribe(topic, func(t string, msg bus.Message) error {
			if v, ok := toFloat(msg["water_level"]); ok {
				d.levels[i] = v
				d.levelsKnown[i] = true
			}
			return nil
		})
	}

	cfg.Bus.Subscribe(cfg.ForecastTopic, func(t string, msg bus.Message) error {
		if values, ok := msg["forecast_values"].([]float64); ok {
			d.forecast = values
		}
		return nil
	})

	return d
}

func (d *MPCDispatcher) allLevelsKnown() bool {
	for _, known := range d.levelsKnown {
		if !known {
			return false
		}
	}
	return true
}

// Run solves the finite-horizon optimization once per tick, provided
// every canal's state and a forecast are known.
func (d *MPCDispatcher) Run(t float64) error {
	n := len(d.cfg.StateTopics)
	if n == 0 || !d.allLevelsKnown() || len(d.forecast) < d.cfg.Horizon {
		return nil
	}

	target := d.cfg.NormalSetpoints
	for _, f := range d.forecast {
		if f > 0 {
			target = make([]float64, n)
			for i := range target {
				target[i] = d.cfg.EmergencySetpoint
			}
			break
		}
	}

	x0 := make([]float64, d.cfg.Horizon*n)
	bounds := make([]optimize.Bounds, d.cfg.Horizon*n)
	for i := 0; i < d.cfg.Horizon; i++ {
		for j := 0; j < n; j++ {
			x0[i*n+j] = target[j]
			bounds[i*n+j] = optimize.Bounds{Lo: 2, Hi: 6}
		}
	}

	objective := d.objective(target)

	res, err := optimize.Minimize(objective, x0, bounds, optimize.SLSQP)
	if err != nil {
		res = optimize.Result{Success: false, Message: err.Error()}
	}
	if !res.Success {
		metrics.RecordOptimizerFailure("mpc")
		log.GetLogger().Warnf("mpc optimizer did not converge (%s); falling back to nominal setpoints", res.Message)
		d.publish(target)
		return nil
	}

	firstStep := res.X[:n]
	d.publish(firstStep)
	d.lastAppliedU = append([]float64(nil), firstStep...)
	return nil
}

func (d *MPCDispatcher) publish(u []float64) {
	for j, topic := range d.cfg.CommandTopics {
		d.cfg.Bus.Publish(topic, bus.Message{"new_setpoint": u[j]})
	}
}

// objective builds the MPC cost function for a fixed target setpoint
// vector, closing over the current levels and forecast.
func (d *MPCDispatcher) objective(target []float64) optimize.ObjectiveFunc {
	n := len(d.cfg.StateTopics)
	levels0 := append([]float64(nil), d.levels...)
	forecast := d.forecast
	uPrev0 := d.lastAppliedU

	return func(x []float64) float64 {
		levels := append([]float64(nil), levels0...)
		uPrev := append([]float64(nil), uPrev0...)
		cost := 0.0

		for i := 0; i < d.cfg.Horizon; i++ {
			u := x[i*n : i*n+n]

			outs := make([]float64, n)
			for j := range outs {
				outs[j] = d.cfg.OutflowCoeffs[j] / (u[j] + mpcEpsilon)
			}
			ins := make([]float64, n)
			if n > 0 {
				ins[0] = forecast[i]
			}
			for j := 1; j < n; j++ {
				ins[j] = outs[j-1]
			}

			for j := 0; j < n; j++ {
				if d.cfg.Areas[j] != 0 {
					levels[j] += d.cfg.Dt / d.cfg.Areas[j] * (ins[j] - outs[j])
				}
				cost += d.cfg.QWeight*(u[j]-target[j])*(u[j]-target[j])
				cost += d.cfg.RWeight*(u[j]-uPrev[j])*(u[j]-uPrev[j])
				if levels[j] > d.cfg.FloodLevels[j] {
					over := levels[j] - d.cfg.FloodLevels[j]
					cost += 1e6 * over * over
				}
			}
			uPrev = u
		}
		return cost
	}
}
