package component

// Lake is a Reservoir whose evaporative loss is computed from the local
// surface area (the secant slope of the storage curve at the current
// volume) times a configured evaporation rate.
//
// Grounded on original_source/core_lib/physical_objects/lake.py.
type Lake struct {
	*Reservoir
	evaporationRate float64 // length/time, e.g. meters/second
}

// NewLake constructs a Lake with the given initial volume, storage curve
// and evaporation rate.
func NewLake(id string, initialVolume float64, curve *StorageCurve, evaporationRate float64) *Lake {
	l := &Lake{Reservoir: NewReservoir(id, initialVolume, curve), evaporationRate: evaporationRate}
	l.evaporationFn = l.evaporation
	return l
}

func (l *Lake) evaporation() float64 {
	area := l.curve.SurfaceAreaAt(l.volume)
	return l.evaporationRate * area
}

// Step clamps outflow to the maximum the current volume can sustain over
// dt (volume/dt) before delegating to the embedded Reservoir's water
// balance, matching the source's max_possible_outflow guard.
func (l *Lake) Step(action Action, dt float64) (State, error) {
	if dt > 0 {
		maxOutflow := l.volume / dt
		if requested, ok := actionFloatPtr(action, "outflow"); ok && requested > maxOutflow {
			action = cloneAction(action)
			action["outflow"] = maxOutflow
		}
	}
	return l.Reservoir.Step(action, dt)
}

func cloneAction(a Action) Action {
	out := make(Action, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (l *Lake) IdentifyParameters(data map[string][]float64) (Parameters, error) {
	return identifyStorageCurve(l.id, l.curve, data)
}
