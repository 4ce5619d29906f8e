package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPIDAntiWindupFreezesIntegralWhenSaturated(t *testing.T) {
	p := NewPID(0, 1, 0, 100, 0, 10)

	// Large sustained error drives the output to saturation repeatedly;
	// the integral must stop accumulating once saturated.
	for i := 0; i < 20; i++ {
		p.Compute(0, 1)
	}
	frozen := p.integral

	for i := 0; i < 20; i++ {
		p.Compute(0, 1)
	}
	assert.Equal(t, frozen, p.integral, "integral must not accumulate further once output is saturated")
}

func TestPIDSetSetpointResetsIntegralAndDerivative(t *testing.T) {
	p := NewPID(1, 1, 1, 10, -100, 100)
	p.Compute(0, 1)
	p.Compute(0, 1)
	assert.NotZero(t, p.integral)

	p.SetSetpoint(5)
	assert.Zero(t, p.integral)
	assert.False(t, p.hasPrevErr)
}

func TestPIDConvergesTowardSetpoint(t *testing.T) {
	p := NewPID(0.5, 0.1, 0, 10, -1000, 1000)
	pv := 0.0
	for i := 0; i < 200; i++ {
		out := p.Compute(pv, 1)
		pv += out.Value * 0.05
	}
	assert.InDelta(t, 10.0, pv, 1.0)
}
