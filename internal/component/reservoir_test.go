package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S2. Reservoir mass balance.
func TestReservoirMassBalance(t *testing.T) {
	surfaceArea := 1.5e6
	curve, err := NewStorageCurve("res1", []float64{0, 1e9}, []float64{0, 1e9 / surfaceArea})
	require.NoError(t, err)

	r := NewReservoir("res1", 21e6, curve)
	r.SetInflow(500)

	state, err := r.Step(Action{"outflow": 350.0}, 3600)
	require.NoError(t, err)

	expectedVolume := 21e6 + 150*3600.0
	assert.InDelta(t, expectedVolume, state["volume"], 1e-6)
	assert.InDelta(t, expectedVolume/surfaceArea, state["water_level"], 1e-6)
}

func TestReservoirVolumeNeverNegative(t *testing.T) {
	curve, err := NewStorageCurve("res1", []float64{0, 100}, []float64{0, 10})
	require.NoError(t, err)

	r := NewReservoir("res1", 5, curve)
	r.SetInflow(0)
	state, err := r.Step(Action{"outflow": 1000.0}, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, state["volume"], 0.0)
}

func TestStorageCurveRejectsNonMonotonicVolumes(t *testing.T) {
	_, err := NewStorageCurve("res1", []float64{0, 10, 5}, []float64{0, 1, 2})
	var invalid *InvalidStateParameterError
	assert.ErrorAs(t, err, &invalid)
}

func TestStorageCurveRoundTrip(t *testing.T) {
	curve, err := NewStorageCurve("res1", []float64{0, 10, 20, 30}, []float64{0, 1, 2.5, 4})
	require.NoError(t, err)

	for _, v := range []float64{0, 5, 10, 15, 20, 25, 30} {
		level := curve.LevelAt(v)
		roundTripped := curve.VolumeAt(level)
		assert.InDelta(t, v, roundTripped, 1e-9)
	}
}
