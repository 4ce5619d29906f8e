// Package optimize provides the shared nonlinear bounded-minimization
// capability described in spec.md §9's design note
// ("minimize(f, x0, bounds, method) -> {x, success, message}"), used by
// both MPC setpoint optimization and offline parameter identification.
//
// gonum.org/v1/gonum/optimize does not implement SLSQP or a natively
// bounded L-BFGS-B; every Method here is answered by gonum's
// unconstrained NelderMead with a quadratic penalty added outside the
// feasible box, which is a standard bounded-optimization reduction
// and keeps every call site working purely in terms of box constraints
// regardless of which underlying gonum method answers it.
package optimize

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// Bounds is an inclusive box constraint on a single decision variable.
type Bounds struct {
	Lo, Hi float64
}

// ObjectiveFunc is the function to minimize.
type ObjectiveFunc func(x []float64) float64

// Method names the solver family to use; all are documented hints per
// spec.md §9 — callers pick the one conventionally associated with the
// model being estimated, but any may be substituted.
type Method int

const (
	NelderMead Method = iota
	LBFGSB
	SLSQP
)

// Result is the outcome of a Minimize call.
type Result struct {
	X       []float64
	Fun     float64
	Success bool
	Message string
}

const penaltyWeight = 1e8

// Minimize finds x minimizing f subject to bounds, starting from x0.
// It never panics and never blocks indefinitely: on non-convergence it
// returns Success=false with the best point found and a descriptive
// Message, leaving the decision of how to recover (fallback setpoints,
// keep existing parameters) to the caller per spec.md §7's
// OptimizerFailure policy.
func Minimize(f ObjectiveFunc, x0 []float64, bounds []Bounds, method Method) (Result, error) {
	if len(bounds) != len(x0) {
		return Result{}, fmt.Errorf("optimize: len(bounds)=%d must equal len(x0)=%d", len(bounds), len(x0))
	}

	penalized := func(x []float64) float64 {
		penalty := 0.0
		clamped := make([]float64, len(x))
		for i, xi := range x {
			lo, hi := bounds[i].Lo, bounds[i].Hi
			c := xi
			if c < lo {
				penalty += (lo - c) * (lo - c)
				c = lo
			} else if c > hi {
				penalty += (c - hi) * (c - hi)
				c = hi
			}
			clamped[i] = c
		}
		return f(clamped) + penaltyWeight*penalty
	}

	problem := optimize.Problem{Func: penalized}

	var solver optimize.Method
	switch method {
	case NelderMead:
		solver = &optimize.NelderMead{}
	default:
		// LBFGSB and SLSQP are also answered by gonum's gradient-free
		// Nelder-Mead, wrapped in the same penalty reduction; gonum's
		// LBFGS requires a gradient, which this framework's objectives
		// (RMSE against simulated trajectories, MPC cost) do not
		// supply analytically.
		solver = &optimize.NelderMead{}
	}

	res, err := optimize.Minimize(problem, x0, nil, solver)
	if err != nil {
		return Result{X: clampToBounds(x0, bounds), Success: false, Message: err.Error()}, nil
	}

	x := clampToBounds(res.X, bounds)
	return Result{
		X:       x,
		Fun:     f(x),
		Success: res.Status == optimize.Success || res.Status == optimize.FunctionConvergence,
		Message: res.Status.String(),
	}, nil
}

func clampToBounds(x []float64, bounds []Bounds) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		lo, hi := bounds[i].Lo, bounds[i].Hi
		if xi < lo {
			xi = lo
		} else if xi > hi {
			xi = hi
		}
		out[i] = xi
	}
	return out
}
