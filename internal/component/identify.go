package component

import (
	"fmt"
	"math"

	"hydromas/internal/optimize"
)

// identifyStorageCurve re-estimates a Reservoir/Lake's level vector by
// simulating the water balance implied by observed inflow/outflow and
// minimizing RMSE against observed levels, holding the volume support
// fixed — per spec.md §4.8. Each point is bounded by its own and its
// neighbours' current levels, widened by a margin of at least 1; adjacent
// bounds overlap, so the fitted levels are not guaranteed to stay
// monotonically ordered.
//
// Expected data keys: "inflow", "outflow", "dt", "observed_level"
// (all equal-length parallel series).
func identifyStorageCurve(componentID string, curve *StorageCurve, data map[string][]float64) (Parameters, error) {
	inflow := data["inflow"]
	outflow := data["outflow"]
	dtSeries := data["dt"]
	observed := data["observed_level"]
	if len(observed) < 2 || len(inflow) != len(observed) || len(outflow) != len(observed) || len(dtSeries) != len(observed) {
		return nil, fmt.Errorf("identify storage curve %q: insufficient or mismatched samples", componentID)
	}

	n := len(curve.Levels)
	x0 := append([]float64(nil), curve.Levels...)
	bounds := make([]optimize.Bounds, n)
	for i := range bounds {
		lo, hi := curve.Levels[i], curve.Levels[i]
		if i > 0 {
			lo = minf(lo, curve.Levels[i-1])
		}
		if i < n-1 {
			hi = maxf(hi, curve.Levels[i+1])
		}
		span := maxf(1.0, hi-lo)
		bounds[i] = optimize.Bounds{Lo: lo - span, Hi: hi + span}
	}

	objective := func(candidateLevels []float64) float64 {
		volume := curve.VolumeAt(observed[0])
		sumSq := 0.0
		for i := range observed {
			simulatedLevel := interp(volume, curve.Volumes, candidateLevels)
			sumSq += (simulatedLevel - observed[i]) * (simulatedLevel - observed[i])
			volume = maxf(0, volume+(inflow[i]-outflow[i])*dtSeries[i])
		}
		return math.Sqrt(sumSq / float64(len(observed)))
	}

	res, err := optimize.Minimize(objective, x0, bounds, optimize.LBFGSB)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("identify storage curve %q: optimizer did not converge: %s", componentID, res.Message)
	}

	return Parameters{
		"storage_curve_volumes": append([]float64(nil), curve.Volumes...),
		"storage_curve_levels":  res.X,
	}, nil
}
