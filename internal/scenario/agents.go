package scenario

import (
	"hydromas/internal/agent/control"
	"hydromas/internal/agent/dispatch"
	"hydromas/internal/agent/identify"
	agentio "hydromas/internal/agent/io"
	"hydromas/internal/agent/perception"
	"hydromas/internal/bus"
	"hydromas/internal/component"
	"hydromas/internal/harness"
)

// buildContext carries everything an agentSpec's references may resolve
// against: the bus every agent is wired onto, the already-constructed
// components keyed by id, and the harness itself, so that agents whose
// published commands are meant to reach a physical component's Step can
// register the routing via harness.SubscribeToAction at construction
// time.
type buildContext struct {
	bus        *bus.Bus
	components map[string]component.Simulatable
	dt         float64
	harness    *harness.Harness
}

func (ctx *buildContext) component(field, id string) (component.Simulatable, error) {
	c, ok := ctx.components[id]
	if !ok {
		return nil, &MissingReferenceError{Field: field, ID: id}
	}
	return c, nil
}

// buildAgent instantiates the agent named by spec.Class.
func buildAgent(spec agentSpec, ctx *buildContext) (harness.Agent, error) {
	cfg := spec.Config
	if cfg == nil {
		cfg = map[string]interface{}{}
	}

	switch spec.Class {
	case "DigitalTwinAgent":
		target, err := ctx.component("simulated_object_id", getString(cfg, "simulated_object_id", ""))
		if err != nil {
			return nil, err
		}
		return perception.New(spec.ID, target, ctx.bus, getString(cfg, "state_topic", ""), floatMap(getMap(cfg, "smoothing_alpha"))), nil

	case "PumpPerceptionAgent":
		target, err := ctx.component("simulated_object_id", getString(cfg, "simulated_object_id", ""))
		if err != nil {
			return nil, err
		}
		return perception.NewPumpPerceptionAgent(spec.ID, target, ctx.bus, getString(cfg, "state_topic", ""), floatMap(getMap(cfg, "smoothing_alpha"))), nil

	case "LocalControlAgent", "GateControlAgent", "ValveControlAgent", "WaterTurbineControlAgent":
		controller, extraActionTopics, err := resolveController(cfg)
		if err != nil {
			return nil, err
		}
		actionTopic := getString(cfg, "action_topic", "")
		lcCfg := control.Config{
			ID:               spec.ID,
			Controller:       controller,
			Bus:              ctx.bus,
			ObservationTopic: getString(cfg, "observation_topic", ""),
			ObservationKey:   getString(cfg, "observation_key", ""),
			CommandTopic:     getString(cfg, "command_topic", ""),
			FeedbackTopic:    getString(cfg, "feedback_topic", ""),
			ActionTopic:      actionTopic,
			Dt:               ctx.dt,
		}
		if actionTopic != "" {
			ctx.harness.SubscribeToAction(actionTopic)
		}
		for _, topic := range extraActionTopics {
			if topic != "" {
				ctx.harness.SubscribeToAction(topic)
			}
		}
		switch spec.Class {
		case "GateControlAgent":
			return control.NewGateControlAgent(lcCfg), nil
		case "ValveControlAgent":
			return control.NewValveControlAgent(lcCfg), nil
		case "WaterTurbineControlAgent":
			return control.NewWaterTurbineControlAgent(lcCfg), nil
		default:
			return control.NewLocalControlAgent(lcCfg), nil
		}

	case "CentralDispatcherAgent":
		return buildDispatcher(spec.ID, cfg, ctx)

	case "EmergencyAgent":
		reservoir, err := ctx.component("target_component_id", getString(cfg, "target_component_id", ""))
		if err != nil {
			return nil, err
		}
		commandTopic := getString(cfg, "command_topic", "")
		if commandTopic != "" {
			ctx.harness.SubscribeToAction(commandTopic)
		}
		return dispatch.NewEmergencyDispatcher(ctx.bus, reservoir, commandTopic, getFloat(cfg, "emergency_flood_level", 0)), nil

	case "CentralAnomalyDetectionAgent":
		return dispatch.NewAnomalyDetector(ctx.bus,
			getStringSlice(cfg, "monitored_topics"),
			getString(cfg, "alert_topic", ""),
			getFloat(cfg, "outflow_threshold", 0.01),
		), nil

	case "DemandForecastingAgent":
		return dispatch.NewDemandForecaster(ctx.bus,
			getString(cfg, "data_topic", ""),
			getString(cfg, "forecast_topic", ""),
			getInt(cfg, "window_size", 10),
			getInt(cfg, "max_history", 1000),
			getFloat(cfg, "interval", 3600),
			getInt(cfg, "horizon_steps", 24),
		), nil

	case "ParameterIdentificationAgent":
		modelID := getString(cfg, "target_model_id", "")
		target, err := ctx.component("target_model_id", modelID)
		if err != nil {
			return nil, err
		}
		identifiable, ok := target.(component.Identifiable)
		if !ok {
			return nil, &SchemaError{Context: spec.ID, Reason: "target_model_id component does not support parameter identification"}
		}
		dataMapRaw := getMap(cfg, "identification_data_map")
		dataMap := make([]identify.DataMapping, 0, len(dataMapRaw))
		for key, topic := range dataMapRaw {
			if t, ok := topic.(string); ok {
				dataMap = append(dataMap, identify.DataMapping{ModelKey: key, Topic: t})
			}
		}
		return identify.NewParameterIdentificationAgent(spec.ID, identifiable, modelID, ctx.bus, getInt(cfg, "identification_interval", 100), dataMap), nil

	case "ModelUpdaterAgent":
		modelID := getString(cfg, "target_model_id", "")
		target, err := ctx.component("target_model_id", modelID)
		if err != nil {
			return nil, err
		}
		updatable, ok := target.(component.Updatable)
		if !ok {
			return nil, &SchemaError{Context: spec.ID, Reason: "target_model_id component does not support parameter updates"}
		}
		return identify.NewModelUpdaterAgent(spec.ID, ctx.bus, modelID, updatable), nil

	case "CsvInflowAgent":
		inflowTopic := getString(cfg, "inflow_topic", "")
		if inflowTopic == "" {
			if targetID := getString(cfg, "target_component_id", ""); targetID != "" {
				inflowTopic = "inflow/" + targetID
			}
		}
		return agentio.NewCsvInflowAgent(spec.ID, ctx.bus,
			getString(cfg, "csv_file_path", ""),
			getString(cfg, "time_column", "time"),
			getString(cfg, "data_column", "value"),
			inflowTopic,
		), nil

	case "ConstantValueAgent":
		return control.NewConstantValueAgent(ctx.bus, getString(cfg, "topic", ""), getString(cfg, "key", "value"), getFloat(cfg, "value", 0)), nil

	case "SignalAggregatorAgent":
		return control.NewSignalAggregatorAgent(ctx.bus, getStringSlice(cfg, "input_topics"), getString(cfg, "key", "value"), getString(cfg, "output_topic", "")), nil

	case "StepAgent":
		action := make(bus.Message, len(getMap(cfg, "action")))
		for k, v := range getMap(cfg, "action") {
			action[k] = v
		}
		return control.NewStepAgent(ctx.bus, getString(cfg, "topic", ""), action, getFloat(cfg, "action_time", 0)), nil

	default:
		return nil, &UnknownClassError{Kind: "agent", Class: spec.Class}
	}
}

// resolveController reads either a nested {class, config} controller
// object under the "controller" key (recursive instantiation) or
// defaults to a bare PID built from the top-level kp, ki, kd, setpoint,
// out_min and out_max fields when no nested controller is given. The second return value lists any extra
// action topics the resolved controller publishes directly (see
// buildController).
func resolveController(cfg map[string]interface{}) (control.Controller, []string, error) {
	if nested := getMap(cfg, "controller"); nested != nil {
		return buildController(classConfig{Class: getString(nested, "class", ""), Config: getMap(nested, "config")})
	}
	return control.NewPID(
		getFloat(cfg, "kp", 0),
		getFloat(cfg, "ki", 0),
		getFloat(cfg, "kd", 0),
		getFloat(cfg, "setpoint", 0),
		getFloat(cfg, "out_min", 0),
		getFloat(cfg, "out_max", 1),
	), nil, nil
}

// buildDispatcher selects among the three CentralDispatcherAgent modes
// per spec.md §4.7: rule-based hysteresis, MPC, and emergency override.
func buildDispatcher(id string, cfg map[string]interface{}, ctx *buildContext) (harness.Agent, error) {
	switch getString(cfg, "mode", "rule") {
	case "rule":
		return dispatch.NewRuleDispatcher(ctx.bus,
			getString(cfg, "state_topic", ""),
			getString(cfg, "observation_key", "water_level"),
			getString(cfg, "command_topic", ""),
			getFloat(cfg, "low_level", 0),
			getFloat(cfg, "high_level", 0),
			getFloat(cfg, "low_setpoint", 0),
			getFloat(cfg, "high_setpoint", 0),
		), nil

	case "emergency":
		reservoir, err := ctx.component("target_component_id", getString(cfg, "target_component_id", ""))
		if err != nil {
			return nil, err
		}
		commandTopic := getString(cfg, "command_topic", "")
		if commandTopic != "" {
			ctx.harness.SubscribeToAction(commandTopic)
		}
		return dispatch.NewEmergencyDispatcher(ctx.bus, reservoir, commandTopic, getFloat(cfg, "emergency_flood_level", 0)), nil

	case "mpc":
		return dispatch.NewMPCDispatcher(dispatch.MPCConfig{
			Bus:               ctx.bus,
			StateTopics:       getStringSlice(cfg, "state_topics"),
			CommandTopics:     getStringSlice(cfg, "command_topics"),
			ForecastTopic:     getString(cfg, "forecast_topic", ""),
			Horizon:           getInt(cfg, "horizon", 6),
			NormalSetpoints:   getFloatSlice(cfg, "normal_setpoints"),
			EmergencySetpoint: getFloat(cfg, "emergency_setpoint", 0),
			FloodLevels:       getFloatSlice(cfg, "flood_levels"),
			Areas:             getFloatSlice(cfg, "areas"),
			OutflowCoeffs:     getFloatSlice(cfg, "outflow_coeffs"),
			QWeight:           getFloat(cfg, "q_weight", 1),
			RWeight:           getFloat(cfg, "r_weight", 1),
			Dt:                ctx.dt,
		}), nil

	default:
		return nil, &SchemaError{Context: id, Reason: "unknown dispatcher mode; expected rule, emergency, or mpc"}
	}
}

func floatMap(m map[string]interface{}) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		}
	}
	return out
}
