package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanalWaterLevelNeverNegative(t *testing.T) {
	c, err := NewCanal("canal1", ModelIntegral, 0, 100, 5, 0, 0, 0, 0)
	require.NoError(t, err)
	c.SetInflow(0)
	state, err := c.Step(Action{}, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, state["water_level"], 0.0)
}

func TestCanalIntegralDelayLazilyInitializesBuffer(t *testing.T) {
	c, err := NewCanal("canal1", ModelIntegralDelay, 1, 0, 0, 0.5, 10, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, c.delayBuf)
	c.SetInflow(5)
	_, err = c.Step(Action{}, 2)
	require.NoError(t, err)
	assert.NotNil(t, c.delayBuf)
	assert.Equal(t, int(10.0/2.0)+2, len(c.delayBuf))
}

func TestCanalRejectsStVenantModelType(t *testing.T) {
	_, err := NewCanal("canal1", "st_venant", 0, 0, 0, 0, 0, 0, 0)
	var invalid *InvalidStateParameterError
	assert.ErrorAs(t, err, &invalid)
}

func TestPumpZeroOutflowWhenHeadExceedsMax(t *testing.T) {
	p := NewPump("pump1", 100, 5)
	state, err := p.Step(Action{"status": 1.0, "upstream_head": 0.0, "downstream_head": 10.0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, state["outflow"])
}

func TestPumpDeliversMaxFlowWithinHeadLimit(t *testing.T) {
	p := NewPump("pump1", 100, 5)
	state, err := p.Step(Action{"status": 1.0, "upstream_head": 0.0, "downstream_head": 3.0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, state["outflow"])
}

func TestValveZeroOpeningMeansZeroOutflow(t *testing.T) {
	v := NewValve("valve1", 0.6, 1.0, 0)
	state, err := v.Step(Action{"upstream_head": 5.0, "downstream_head": 0.0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, state["outflow"])
}
