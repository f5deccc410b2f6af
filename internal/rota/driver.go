package rota

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/pkg/cpsolver"
)

// Outcome classifies the result of one solve call.
type Outcome int

const (
	// OutcomeOptimal means the returned schedule is proven best.
	OutcomeOptimal Outcome = iota
	// OutcomeFeasible means the time bound was hit and the best schedule
	// found so far is returned.
	OutcomeFeasible
	// OutcomeInfeasible means no assignment satisfies the hard constraints.
	OutcomeInfeasible
	// OutcomeFault means the backend exhausted its time bound without
	// finding any solution at all.
	OutcomeFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOptimal:
		return "OPTIMAL"
	case OutcomeFeasible:
		return "FEASIBLE"
	case OutcomeInfeasible:
		return "INFEASIBLE"
	default:
		return "FAULT"
	}
}

// Solved reports whether the outcome carries a valid schedule.
func (o Outcome) Solved() bool {
	return o == OutcomeOptimal || o == OutcomeFeasible
}

// Valuation is a solved variable assignment bound to its model metadata.
type Valuation struct {
	model     *Model
	values    []bool
	objective int64
}

// Assigned reports whether the employee at snapshot index e works shift s on day d.
func (v *Valuation) Assigned(e, d int, s ShiftType) bool {
	return v.values[v.model.vars[e][d][s]]
}

// Objective returns the solved objective value in model units.
func (v *Valuation) Objective() int64 {
	return v.objective
}

// DefaultTimeLimit is the reference wall-clock bound for one solve.
const DefaultTimeLimit = 10 * time.Second

// Driver executes models against the optimization backend under a time bound.
// It never retries; callers may re-invoke with a larger bound or relaxed input.
type Driver struct {
	timeLimit time.Duration
	logger    *zap.Logger
}

// NewDriver builds a driver. A non-positive time limit falls back to the default.
func NewDriver(timeLimit time.Duration, logger *zap.Logger) *Driver {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{timeLimit: timeLimit, logger: logger}
}

// Solve runs the model once. The valuation is nil unless the outcome is
// Optimal or Feasible. Infeasibility and backend faults are reported as
// distinct outcomes but logged here for diagnosis, since callers surface both
// the same way.
func (d *Driver) Solve(ctx context.Context, m *Model) (*Valuation, Outcome) {
	start := time.Now()
	res := cpsolver.Solve(ctx, m.cp, cpsolver.Options{TimeLimit: d.timeLimit})
	elapsed := time.Since(start)

	switch res.Status {
	case cpsolver.StatusOptimal, cpsolver.StatusFeasible:
		outcome := OutcomeOptimal
		if res.Status == cpsolver.StatusFeasible {
			outcome = OutcomeFeasible
		}
		d.logger.Info("rota solve finished",
			zap.String("outcome", outcome.String()),
			zap.Int64("objective", res.Objective),
			zap.Duration("elapsed", elapsed),
			zap.Int("variables", m.cp.NumVars()),
		)
		return &Valuation{model: m, values: res.Values, objective: res.Objective}, outcome
	case cpsolver.StatusInfeasible:
		d.logger.Warn("rota solve proved infeasible", zap.Duration("elapsed", elapsed))
		return nil, OutcomeInfeasible
	default:
		d.logger.Error("rota solve hit the time bound with no incumbent",
			zap.Duration("elapsed", elapsed),
			zap.Duration("time_limit", d.timeLimit),
		)
		return nil, OutcomeFault
	}
}
