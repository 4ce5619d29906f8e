package component

// Pump is an on/off pump with a fixed max flow rate, delivering it only
// when the required lift is within reach of its max head.
//
// Grounded on spec.md §4.2.6 (no dedicated original_source file was
// retrieved for pump.py; the model is implemented directly from the
// invariants and boundary behaviors in spec.md §3 and §8).
type Pump struct {
	id string

	maxFlowRate float64
	maxHead     float64

	status  int // 0 or 1
	outflow float64
}

// NewPump constructs a Pump, initially off.
func NewPump(id string, maxFlowRate, maxHead float64) *Pump {
	return &Pump{id: id, maxFlowRate: maxFlowRate, maxHead: maxHead}
}

func (p *Pump) ID() string { return p.id }

func (p *Pump) SetInflow(float64) {}

// Step: status comes from action ("status" 0/1, defaulting to the last
// known value) or a control_signal (the harness-routed output of a
// LocalControlAgent), which is read the same way — nonzero turns the
// pump on, zero turns it off; outflow is max_flow_rate when on and
// required_head (upstream_head - downstream_head) does not exceed
// max_head, else zero.
func (p *Pump) Step(action Action, dt float64) (State, error) {
	if s, ok := actionFloatPtr(action, "control_signal"); ok {
		if s != 0 {
			p.status = 1
		} else {
			p.status = 0
		}
	} else if s, ok := actionFloatPtr(action, "status"); ok {
		if s != 0 {
			p.status = 1
		} else {
			p.status = 0
		}
	}

	upstream := actionFloat(action, "upstream_head", 0)
	downstream := actionFloat(action, "downstream_head", 0)
	requiredHead := downstream - upstream

	if p.status == 1 && requiredHead <= p.maxHead {
		p.outflow = p.maxFlowRate
	} else {
		p.outflow = 0
	}

	return p.GetState(), nil
}

func (p *Pump) GetState() State {
	return State{"status": p.status, "outflow": p.outflow}
}

func (p *Pump) SetState(s State) {
	if v, ok := toFloat(s["status"]); ok {
		if v != 0 {
			p.status = 1
		} else {
			p.status = 0
		}
	}
	if v, ok := toFloat(s["outflow"]); ok {
		p.outflow = v
	}
}

func (p *Pump) GetParameters() Parameters {
	return Parameters{"max_flow_rate": p.maxFlowRate, "max_head": p.maxHead}
}

func (p *Pump) SetParameters(params Parameters) {
	if v, ok := toFloat(params["max_flow_rate"]); ok {
		p.maxFlowRate = v
	}
	if v, ok := toFloat(params["max_head"]); ok {
		p.maxHead = v
	}
}
