package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S6. Topological ordering.
func TestBuildOrdersDiamondGraph(t *testing.T) {
	topo := New()
	for _, id := range []string{"A", "B", "C", "D"} {
		topo.AddComponent(id)
	}
	require.NoError(t, topo.AddConnection("A", "B"))
	require.NoError(t, topo.AddConnection("A", "C"))
	require.NoError(t, topo.AddConnection("B", "D"))
	require.NoError(t, topo.AddConnection("C", "D"))

	require.NoError(t, topo.Build())

	pos := make(map[string]int)
	for i, id := range topo.Order() {
		pos[id] = i
	}
	assert.Less(t, pos["A"], pos["B"])
	assert.Less(t, pos["A"], pos["C"])
	assert.Less(t, pos["B"], pos["D"])
	assert.Less(t, pos["C"], pos["D"])
}

func TestBuildDetectsCycle(t *testing.T) {
	topo := New()
	for _, id := range []string{"A", "B", "C", "D"} {
		topo.AddComponent(id)
	}
	require.NoError(t, topo.AddConnection("A", "B"))
	require.NoError(t, topo.AddConnection("A", "C"))
	require.NoError(t, topo.AddConnection("B", "D"))
	require.NoError(t, topo.AddConnection("C", "D"))
	require.NoError(t, topo.AddConnection("D", "A"))

	err := topo.Build()
	require.Error(t, err)
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestAddConnectionRejectsUnknownComponent(t *testing.T) {
	topo := New()
	topo.AddComponent("A")
	err := topo.AddConnection("A", "ghost")
	var unknown *UnknownComponentError
	assert.ErrorAs(t, err, &unknown)
}

func TestAggregateInflowsSumsUpstreamOutflow(t *testing.T) {
	topo := New()
	for _, id := range []string{"A", "B", "C"} {
		topo.AddComponent(id)
	}
	require.NoError(t, topo.AddConnection("A", "C"))
	require.NoError(t, topo.AddConnection("B", "C"))
	require.NoError(t, topo.Build())

	states := map[string]map[string]float64{
		"A": {"outflow": 10},
		"B": {"outflow": 5},
		"C": {"outflow": 0},
	}
	inflows := AggregateInflows(topo, states)
	assert.Equal(t, 15.0, inflows["C"])
	assert.Equal(t, 0.0, inflows["A"])
}
