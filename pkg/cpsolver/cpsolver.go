// Package cpsolver provides a small pseudo-boolean optimizer: boolean decision
// variables, linear constraints over positively weighted sums of variables, and
// a single linear objective maximized by time-bounded branch-and-bound search
// with unit propagation.
package cpsolver

import (
	"context"
	"fmt"
	"time"
)

// Var identifies a boolean decision variable within a Model.
type Var int

// Term pairs a variable with its positive integer coefficient.
type Term struct {
	Var  Var
	Coef int64
}

// Status reports the outcome of a solve.
type Status int

const (
	// StatusUnknown means the deadline expired before any solution was found.
	StatusUnknown Status = iota
	// StatusOptimal means the returned solution is proven best.
	StatusOptimal
	// StatusFeasible means a solution was found but optimality is unproven.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

type linConstr struct {
	terms  []Term
	lo, hi int64
}

// Model accumulates variables, linear constraints and the objective.
// A Model is not safe for concurrent use and is consumed by a single Solve call.
type Model struct {
	numVars int
	constrs []linConstr
	obj     []Term
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBool allocates a fresh boolean variable.
func (m *Model) NewBool() Var {
	v := Var(m.numVars)
	m.numVars++
	return v
}

// NumVars reports how many variables the model holds.
func (m *Model) NumVars() int {
	return m.numVars
}

// AddLinear constrains lo <= sum(terms) <= hi. Coefficients must be positive.
func (m *Model) AddLinear(terms []Term, lo, hi int64) {
	for _, t := range terms {
		if t.Coef <= 0 {
			panic(fmt.Sprintf("cpsolver: non-positive coefficient %d for var %d", t.Coef, t.Var))
		}
		if int(t.Var) < 0 || int(t.Var) >= m.numVars {
			panic(fmt.Sprintf("cpsolver: unknown var %d", t.Var))
		}
	}
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.constrs = append(m.constrs, linConstr{terms: cp, lo: lo, hi: hi})
}

// AddExactly constrains the number of true variables to n.
func (m *Model) AddExactly(vars []Var, n int64) {
	m.AddLinear(unitTerms(vars), n, n)
}

// AddAtLeast constrains the number of true variables to at least n.
func (m *Model) AddAtLeast(vars []Var, n int64) {
	m.AddLinear(unitTerms(vars), n, int64(len(vars)))
}

// AddAtMost constrains the number of true variables to at most n.
func (m *Model) AddAtMost(vars []Var, n int64) {
	m.AddLinear(unitTerms(vars), 0, n)
}

// FixTrue forces a variable to 1.
func (m *Model) FixTrue(v Var) {
	m.AddLinear([]Term{{Var: v, Coef: 1}}, 1, 1)
}

// FixFalse forces a variable to 0.
func (m *Model) FixFalse(v Var) {
	m.AddLinear([]Term{{Var: v, Coef: 1}}, 0, 0)
}

// Maximize sets the objective to sum(terms). Weights must be positive.
func (m *Model) Maximize(terms []Term) {
	for _, t := range terms {
		if t.Coef <= 0 {
			panic(fmt.Sprintf("cpsolver: non-positive objective weight %d for var %d", t.Coef, t.Var))
		}
	}
	m.obj = make([]Term, len(terms))
	copy(m.obj, terms)
}

func unitTerms(vars []Var) []Term {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	return terms
}

// Result carries the solve outcome. Values is indexed by Var and is only
// populated for Optimal and Feasible results.
type Result struct {
	Status    Status
	Values    []bool
	Objective int64
}

// Options tunes a Solve call.
type Options struct {
	// TimeLimit bounds wall-clock search time. Zero means 10 seconds.
	TimeLimit time.Duration
}

const defaultTimeLimit = 10 * time.Second

// Solve runs branch-and-bound on the model. The search stops at the earlier of
// the time limit or ctx cancellation; whichever incumbent exists at that point
// is returned as Feasible.
func Solve(ctx context.Context, m *Model, opts Options) Result {
	limit := opts.TimeLimit
	if limit <= 0 {
		limit = defaultTimeLimit
	}
	s := newSearcher(ctx, m, time.Now().Add(limit))

	if !s.propagateRoot() {
		return Result{Status: StatusInfeasible}
	}
	complete := s.dfs()

	switch {
	case s.hasIncumbent && complete:
		return Result{Status: StatusOptimal, Values: s.bestValues, Objective: s.bestObj}
	case s.hasIncumbent:
		return Result{Status: StatusFeasible, Values: s.bestValues, Objective: s.bestObj}
	case complete:
		return Result{Status: StatusInfeasible}
	default:
		return Result{Status: StatusUnknown}
	}
}
