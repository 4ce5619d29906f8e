package component

import (
	"fmt"
	"math"
)

// CanalModel selects one of the four reduced-order hydraulic behaviors a
// Canal can exhibit. Both the historically separate IntegralDelayCanal /
// IntegralDelayZeroCanal family and the UnifiedCanal family converge on
// this one set of models selected by a single model_type parameter — see
// DESIGN.md's Open Question decision.
type CanalModel string

const (
	ModelIntegral           CanalModel = "integral"
	ModelIntegralDelay      CanalModel = "integral_delay"
	ModelIntegralDelayZero  CanalModel = "integral_delay_zero"
	ModelLinearReservoir    CanalModel = "linear_reservoir"
)

// Canal is the unified reduced-order canal model.
//
// Grounded on original_source/core_lib/physical_objects/{integral_delay_canal.py,
// integral_delay_zero_canal.py, unified_canal.py}.
type Canal struct {
	id        string
	model     CanalModel

	// integral model
	surfaceArea float64
	dischargeK  float64

	// integral_delay / integral_delay_zero
	gain       float64
	delay      float64 // seconds
	zeroTime   float64 // T_z, integral_delay_zero only
	delayBuf   []float64
	delaySize  int

	// linear_reservoir
	storageConstant float64 // K

	waterLevel float64
	inflow     float64
	outflow    float64
	physicalInflow float64
}

// NewCanal constructs a Canal for the given model type. Parameters not
// relevant to the selected model are ignored.
func NewCanal(id string, model CanalModel, initialLevel, surfaceArea, dischargeK, gain, delay, zeroTime, storageConstant float64) (*Canal, error) {
	switch model {
	case ModelIntegral, ModelIntegralDelay, ModelIntegralDelayZero, ModelLinearReservoir:
	case "st_venant":
		return nil, &InvalidStateParameterError{
			ComponentID: id,
			Reason:      "model_type \"st_venant\" is an experimental PDE solver out of scope for this implementation; use integral, integral_delay, integral_delay_zero, or linear_reservoir",
		}
	default:
		return nil, &InvalidStateParameterError{ComponentID: id, Reason: fmt.Sprintf("unknown canal model_type %q", model)}
	}
	return &Canal{
		id:              id,
		model:           model,
		surfaceArea:     surfaceArea,
		dischargeK:      dischargeK,
		gain:            gain,
		delay:           delay,
		zeroTime:        zeroTime,
		storageConstant: storageConstant,
		waterLevel:      maxf(0, initialLevel),
	}, nil
}

func (c *Canal) ID() string { return c.id }

func (c *Canal) SetInflow(value float64) { c.physicalInflow = value }

// ensureDelayBuffer lazily sizes the FIFO delay buffer to
// ceil(delay/dt)+2 the first time dt becomes known, per spec.md §4.2.3.
func (c *Canal) ensureDelayBuffer(dt float64) {
	if c.delayBuf != nil || dt <= 0 {
		return
	}
	size := int(math.Ceil(c.delay/dt)) + 2
	if size < 1 {
		size = 1
	}
	c.delaySize = size
	c.delayBuf = make([]float64, size)
}

// pushDelay appends value to the FIFO and returns the delayed sample
// that falls off the front.
func (c *Canal) pushDelay(value float64) float64 {
	delayed := c.delayBuf[0]
	copy(c.delayBuf, c.delayBuf[1:])
	c.delayBuf[len(c.delayBuf)-1] = value
	return delayed
}

func (c *Canal) Step(action Action, dt float64) (State, error) {
	c.inflow = c.physicalInflow

	switch c.model {
	case ModelIntegral:
		c.outflow = c.dischargeK * math.Sqrt(maxf(0, c.waterLevel))
		if c.surfaceArea > 0 {
			c.waterLevel = maxf(0, c.waterLevel+(c.inflow-c.outflow)/c.surfaceArea*dt)
		}

	case ModelIntegralDelay:
		c.ensureDelayBuffer(dt)
		delayedInflow := c.pushDelay(c.inflow)
		c.outflow = delayedInflow
		c.waterLevel = maxf(0, c.waterLevel+c.gain*(c.inflow-c.outflow)*dt)

	case ModelIntegralDelayZero:
		c.ensureDelayBuffer(dt)
		prevDelayed := c.delayBuf[0]
		delayedInflow := c.pushDelay(c.inflow)
		derivative := 0.0
		if dt > 0 {
			derivative = (delayedInflow - prevDelayed) / dt
		}
		c.outflow = delayedInflow + c.zeroTime*derivative
		c.waterLevel = maxf(0, c.waterLevel+c.gain*(c.inflow-c.outflow)*dt)

	case ModelLinearReservoir:
		denom := c.storageConstant + dt
		if denom != 0 {
			c.outflow = (c.storageConstant*c.outflow + dt*c.inflow) / denom
		}
		if c.surfaceArea > 0 {
			storage := c.storageConstant * c.outflow
			c.waterLevel = maxf(0, storage/c.surfaceArea)
		}
	}

	if math.IsNaN(c.waterLevel) || math.IsNaN(c.outflow) {
		return nil, &NumericFailureError{ComponentID: c.id, Field: "water_level"}
	}
	return c.GetState(), nil
}

func (c *Canal) GetState() State {
	return State{"water_level": c.waterLevel, "inflow": c.inflow, "outflow": c.outflow}
}

func (c *Canal) SetState(s State) {
	if v, ok := toFloat(s["water_level"]); ok {
		c.waterLevel = maxf(0, v)
	}
	if v, ok := toFloat(s["outflow"]); ok {
		c.outflow = v
	}
}

func (c *Canal) GetParameters() Parameters {
	return Parameters{
		"model_type":       string(c.model),
		"surface_area":     c.surfaceArea,
		"discharge_k":      c.dischargeK,
		"gain":             c.gain,
		"delay":            c.delay,
		"zero_time":        c.zeroTime,
		"storage_constant": c.storageConstant,
	}
}

func (c *Canal) SetParameters(p Parameters) {
	if v, ok := toFloat(p["surface_area"]); ok {
		c.surfaceArea = v
	}
	if v, ok := toFloat(p["discharge_k"]); ok {
		c.dischargeK = v
	}
	if v, ok := toFloat(p["gain"]); ok {
		c.gain = v
	}
	if v, ok := toFloat(p["storage_constant"]); ok {
		c.storageConstant = v
	}
}
