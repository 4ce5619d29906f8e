package scenario

import (
	"hydromas/internal/component"
)

// buildComponent instantiates the physical component named by spec.Class.
// initial_state and parameters are read from the same flat map helpers
// since the two vocabularies don't overlap per component type.
func buildComponent(spec componentSpec) (component.Simulatable, error) {
	is, p := spec.InitialState, spec.Parameters
	if is == nil {
		is = map[string]interface{}{}
	}
	if p == nil {
		p = map[string]interface{}{}
	}

	switch spec.Class {
	case "Reservoir":
		curve, err := buildStorageCurve(spec.ID, p)
		if err != nil {
			return nil, err
		}
		return component.NewReservoir(spec.ID, getFloat(is, "volume", 0), curve), nil

	case "Lake":
		curve, err := buildStorageCurve(spec.ID, p)
		if err != nil {
			return nil, err
		}
		return component.NewLake(spec.ID, getFloat(is, "volume", 0), curve, getFloat(p, "evaporation_rate", 0)), nil

	case "Gate":
		return component.NewGate(spec.ID,
			getFloat(is, "opening", 0),
			getFloat(p, "discharge_coefficient", 0.6),
			getFloat(p, "width", 1),
			getFloat(p, "max_opening", 1),
			getFloat(p, "max_rate_of_change", 0.1),
		), nil

	case "Valve":
		return component.NewValve(spec.ID,
			getFloat(p, "discharge_coefficient", 0.6),
			getFloat(p, "area", 1),
			getFloat(is, "opening_percent", 100),
		), nil

	case "Pump":
		return component.NewPump(spec.ID, getFloat(p, "max_flow_rate", 0), getFloat(p, "max_head", 0)), nil

	case "Pipe":
		method := component.FrictionMethod(getString(p, "friction_method", "darcy_weisbach"))
		return component.NewPipe(spec.ID, method,
			getFloat(p, "length", 1),
			getFloat(p, "diameter", 1),
			getFloat(p, "friction_factor", 0.02),
			getFloat(p, "manning_n", 0.013),
		), nil

	case "WaterTurbine":
		return component.NewWaterTurbine(spec.ID, getFloat(p, "head", 0), getFloat(p, "efficiency", 0.85)), nil

	case "Canal", "IntegralDelayCanal", "UnifiedCanal":
		return buildCanal(spec.ID, component.CanalModel(getString(p, "model_type", "integral")), is, p)

	case "RiverChannel", "RainfallRunoff":
		// Thin aliases over the integral canal model — a river channel is
		// treated as an unrouted reach, rainfall-runoff as an inflow-only
		// integrating node. See DESIGN.md.
		return buildCanal(spec.ID, component.ModelIntegral, is, p)

	default:
		return nil, &UnknownClassError{Kind: "component", Class: spec.Class}
	}
}

func buildCanal(id string, model component.CanalModel, is, p map[string]interface{}) (component.Simulatable, error) {
	return component.NewCanal(id, model,
		getFloat(is, "water_level", 0),
		getFloat(p, "surface_area", 0),
		getFloat(p, "discharge_k", 1),
		getFloat(p, "gain", 1),
		getFloat(p, "delay", 0),
		getFloat(p, "zero_time", 0),
		getFloat(p, "storage_constant", 1),
	)
}

func buildStorageCurve(componentID string, p map[string]interface{}) (*component.StorageCurve, error) {
	volumes := getFloatSlice(p, "storage_curve_volumes")
	levels := getFloatSlice(p, "storage_curve_levels")
	if volumes == nil {
		return nil, &SchemaError{Context: componentID, Reason: "missing parameters.storage_curve_volumes"}
	}
	return component.NewStorageCurve(componentID, volumes, levels)
}
