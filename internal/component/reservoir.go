package component

import "math"

// Reservoir is an integrating storage component: volume accumulates
// total inflow minus outflow minus evaporation, and water level is read
// off a storage curve.
//
// Grounded on original_source/core_lib/physical_objects/reservoir.py.
type Reservoir struct {
	id    string
	curve *StorageCurve

	volume           float64
	waterLevel       float64
	outflow          float64
	physicalInflow   float64 // pushed by SetInflow (harness-aggregated upstream outflow)
	dataDrivenInflow float64 // accumulated from subscribed inflow topics within a tick

	// evaporationFn computes evaporative loss (volume/time) for the
	// current state; nil means zero (a plain reservoir). Lake sets this
	// to an area-based formula at construction.
	evaporationFn func() float64
}

// NewReservoir constructs a Reservoir with the given initial volume and
// storage curve.
func NewReservoir(id string, initialVolume float64, curve *StorageCurve) *Reservoir {
	r := &Reservoir{id: id, curve: curve, volume: maxf(0, initialVolume)}
	r.waterLevel = curve.LevelAt(r.volume)
	return r
}

func (r *Reservoir) ID() string { return r.id }

// SetInflow records the physically-aggregated upstream inflow for the
// upcoming Step.
func (r *Reservoir) SetInflow(value float64) {
	r.physicalInflow = value
}

// AddDataDrivenInflow accumulates an inflow contribution pushed via a
// subscribed topic (e.g. a CSV inflow agent). It is reset to zero after
// every Step.
func (r *Reservoir) AddDataDrivenInflow(value float64) {
	r.dataDrivenInflow += value
}

// Step advances the reservoir by dt seconds: total inflow is the sum of
// the harness-aggregated physical inflow and any data-driven inflow
// accumulated since the last step; evaporation defaults to zero unless
// overridden (see Lake).
func (r *Reservoir) Step(action Action, dt float64) (State, error) {
	totalInflow := r.physicalInflow + r.dataDrivenInflow
	evaporation := r.evaporation()
	r.outflow = actionFloat(action, "outflow", 0)

	r.volume = maxf(0, r.volume+(totalInflow-r.outflow-evaporation)*dt)
	r.waterLevel = r.curve.LevelAt(r.volume)

	r.dataDrivenInflow = 0

	if math.IsNaN(r.volume) || math.IsNaN(r.waterLevel) {
		return nil, &NumericFailureError{ComponentID: r.id, Field: "volume"}
	}

	return r.GetState(), nil
}

// evaporation is zero for a plain reservoir; Lake installs evaporationFn
// at construction to compute an area-based loss instead.
func (r *Reservoir) evaporation() float64 {
	if r.evaporationFn == nil {
		return 0
	}
	return r.evaporationFn()
}

func (r *Reservoir) GetState() State {
	return State{
		"volume":      r.volume,
		"water_level": r.waterLevel,
		"outflow":     r.outflow,
		"inflow":      r.physicalInflow + r.dataDrivenInflow,
	}
}

func (r *Reservoir) SetState(s State) {
	if v, ok := toFloat(s["volume"]); ok {
		r.volume = v
		r.waterLevel = r.curve.LevelAt(v)
	}
	if v, ok := toFloat(s["outflow"]); ok {
		r.outflow = v
	}
}

func (r *Reservoir) GetParameters() Parameters {
	return Parameters{"storage_curve_volumes": r.curve.Volumes, "storage_curve_levels": r.curve.Levels}
}

func (r *Reservoir) SetParameters(p Parameters) {
	vols, vok := p["storage_curve_volumes"].([]float64)
	lvls, lok := p["storage_curve_levels"].([]float64)
	if vok && lok {
		if c, err := NewStorageCurve(r.id, vols, lvls); err == nil {
			r.curve = c
			r.waterLevel = r.curve.LevelAt(r.volume)
		}
	}
}

// IdentifyParameters re-estimates the storage curve's level vector by
// minimizing RMSE between a simulated water-balance trajectory and
// observed levels, holding the volume support fixed. The estimator is
// identifyStorageCurve (identify.go), which minimizes via
// internal/optimize; internal/agent/identify's
// ParameterIdentificationAgent is what calls this at run time.
func (r *Reservoir) IdentifyParameters(data map[string][]float64) (Parameters, error) {
	return identifyStorageCurve(r.id, r.curve, data)
}

func (r *Reservoir) UpdateParameters(p Parameters) error {
	r.SetParameters(p)
	return nil
}
