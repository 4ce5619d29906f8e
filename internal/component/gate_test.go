package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3. Gate rate limit.
func TestGateRateLimit(t *testing.T) {
	g := NewGate("gate1", 0.2, 0.6, 2.0, 1.0, 0.1)

	state, err := g.Step(Action{"target_opening": 1.0, "upstream_head": 0.0, "downstream_head": 0.0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, state["opening"], 1e-9)

	_, err = g.Step(Action{"upstream_head": 0.0, "downstream_head": 0.0}, 1)
	require.NoError(t, err)
	state, err = g.Step(Action{"upstream_head": 0.0, "downstream_head": 0.0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, state["opening"], 1e-9)
}

func TestGateNoHeadDifferenceMeansZeroOutflow(t *testing.T) {
	g := NewGate("gate1", 1.0, 0.6, 2.0, 1.0, 0.1)
	state, err := g.Step(Action{"upstream_head": 5.0, "downstream_head": 5.0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, state["outflow"])

	state, err = g.Step(Action{"upstream_head": 4.0, "downstream_head": 5.0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, state["outflow"])
}

func TestGateOpeningStaysWithinBounds(t *testing.T) {
	g := NewGate("gate1", 0.0, 0.6, 2.0, 1.0, 10.0)
	state, err := g.Step(Action{"target_opening": 5.0, "upstream_head": 1.0, "downstream_head": 0.0}, 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, state["opening"], 1.0)
	assert.GreaterOrEqual(t, state["opening"], 0.0)
}
