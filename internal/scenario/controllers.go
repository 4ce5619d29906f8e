package scenario

import (
	"hydromas/internal/agent/control"
)

// buildController recursively instantiates a Controller from a nested
// {class, config} object — the PID core, or one of the custom
// controllers layered on top of it. The second return value lists any
// extra action topics the controller publishes control_signal messages
// to directly (Multi-valued output), on top of whatever scalar
// action_topic the owning agent config declares; the caller must
// subscribe the harness to every one of them for the commands to reach
// their target components.
func buildController(cc classConfig) (control.Controller, []string, error) {
	cfg := cc.Config
	if cfg == nil {
		cfg = map[string]interface{}{}
	}

	switch cc.Class {
	case "PID":
		return control.NewPID(
			getFloat(cfg, "kp", 0),
			getFloat(cfg, "ki", 0),
			getFloat(cfg, "kd", 0),
			getFloat(cfg, "setpoint", 0),
			getFloat(cfg, "out_min", 0),
			getFloat(cfg, "out_max", 1),
		), nil, nil

	case "HydropowerController":
		turbineTopics := getStringSlice(cfg, "turbine_topics")
		return control.NewHydropowerController(
			getFloat(cfg, "setpoint", 0),
			turbineTopics,
			getFloatSlice(cfg, "heads"),
			getFloatSlice(cfg, "efficiencies"),
		), turbineTopics, nil

	case "DirectGateController":
		return control.NewDirectGateController(), nil, nil

	case "JointPIDController":
		nestedPID, ok := cfg["pid"].(map[string]interface{})
		if !ok {
			return nil, nil, &SchemaError{Context: "JointPIDController", Reason: "missing nested pid config"}
		}
		pidCC := classConfig{Class: "PID", Config: getMap(nestedPID, "config")}
		if pidCC.Config == nil {
			pidCC.Config = nestedPID
		}
		pidController, _, err := buildController(pidCC)
		if err != nil {
			return nil, nil, err
		}
		pid, ok := pidController.(*control.PID)
		if !ok {
			return nil, nil, &SchemaError{Context: "JointPIDController", Reason: "nested pid must be class PID"}
		}
		pumpTopic := getString(cfg, "pump_topic", "")
		valveTopic := getString(cfg, "valve_topic", "")
		return control.NewJointPIDController(pid,
			pumpTopic,
			getFloat(cfg, "pump_min", 0),
			getFloat(cfg, "pump_max", 1),
			valveTopic,
			getFloat(cfg, "valve_min", 0),
			getFloat(cfg, "valve_max", 1),
		), []string{pumpTopic, valveTopic}, nil

	default:
		return nil, nil, &UnknownClassError{Kind: "controller", Class: cc.Class}
	}
}
