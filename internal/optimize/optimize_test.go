package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimizeFindsUnconstrainedQuadraticMinimum(t *testing.T) {
	f := func(x []float64) float64 {
		return (x[0] - 3) * (x[0] - 3)
	}
	res, err := Minimize(f, []float64{0}, []Bounds{{Lo: -10, Hi: 10}}, NelderMead)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.X[0], 0.05)
}

func TestMinimizeRespectsBounds(t *testing.T) {
	f := func(x []float64) float64 {
		return (x[0] - 100) * (x[0] - 100)
	}
	res, err := Minimize(f, []float64{0.5}, []Bounds{{Lo: 0.1, Hi: 1.0}}, NelderMead)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.X[0], 1.0)
	assert.GreaterOrEqual(t, res.X[0], 0.1)
}

func TestMinimizeNeverErrorsOnDegenerateObjective(t *testing.T) {
	f := func(x []float64) float64 {
		return math.NaN()
	}
	res, err := Minimize(f, []float64{0}, []Bounds{{Lo: -1, Hi: 1}}, NelderMead)
	require.NoError(t, err)
	assert.NotNil(t, res)
}
