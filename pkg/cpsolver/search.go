package cpsolver

import (
	"context"
	"time"
)

const (
	unset    int8 = -1
	checkEvery    = 256
)

type occurrence struct {
	constr int
	coef   int64
}

type searcher struct {
	m        *Model
	ctx      context.Context
	deadline time.Time

	assign []int8
	trail  []Var

	occ     [][]occurrence
	sumTrue []int64 // weight of true vars per constraint
	sumOpen []int64 // weight of unassigned vars per constraint

	objCoef []int64
	objTrue int64
	objOpen int64

	hasIncumbent bool
	bestObj      int64
	bestValues   []bool

	queue   []int
	nodes   int64
	stopped bool
}

func newSearcher(ctx context.Context, m *Model, deadline time.Time) *searcher {
	s := &searcher{
		m:        m,
		ctx:      ctx,
		deadline: deadline,
		assign:   make([]int8, m.numVars),
		occ:      make([][]occurrence, m.numVars),
		sumTrue:  make([]int64, len(m.constrs)),
		sumOpen:  make([]int64, len(m.constrs)),
		objCoef:  make([]int64, m.numVars),
	}
	for i := range s.assign {
		s.assign[i] = unset
	}
	for ci, c := range m.constrs {
		for _, t := range c.terms {
			s.occ[t.Var] = append(s.occ[t.Var], occurrence{constr: ci, coef: t.Coef})
			s.sumOpen[ci] += t.Coef
		}
	}
	for _, t := range m.obj {
		s.objCoef[t.Var] += t.Coef
		s.objOpen += t.Coef
	}
	return s
}

// propagateRoot seeds the propagation queue with every constraint so that
// empty constraints and forced literals are handled before branching.
func (s *searcher) propagateRoot() bool {
	s.queue = s.queue[:0]
	for ci := range s.m.constrs {
		s.queue = append(s.queue, ci)
	}
	return s.drainQueue()
}

// set records an assignment and queues affected constraints. It fails when the
// variable already holds the opposite value.
func (s *searcher) set(v Var, val int8) bool {
	if cur := s.assign[v]; cur != unset {
		return cur == val
	}
	s.assign[v] = val
	s.trail = append(s.trail, v)
	for _, o := range s.occ[v] {
		s.sumOpen[o.constr] -= o.coef
		if val == 1 {
			s.sumTrue[o.constr] += o.coef
		}
		s.queue = append(s.queue, o.constr)
	}
	if w := s.objCoef[v]; w != 0 {
		s.objOpen -= w
		if val == 1 {
			s.objTrue += w
		}
	}
	return true
}

// drainQueue runs unit propagation to fixpoint. Returns false on conflict.
func (s *searcher) drainQueue() bool {
	for len(s.queue) > 0 {
		ci := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]

		c := &s.m.constrs[ci]
		if s.sumTrue[ci] > c.hi || s.sumTrue[ci]+s.sumOpen[ci] < c.lo {
			s.queue = s.queue[:0]
			return false
		}
		for _, t := range c.terms {
			if s.assign[t.Var] != unset {
				continue
			}
			if s.sumTrue[ci]+t.Coef > c.hi {
				if !s.set(t.Var, 0) {
					s.queue = s.queue[:0]
					return false
				}
			} else if s.sumTrue[ci]+s.sumOpen[ci]-t.Coef < c.lo {
				if !s.set(t.Var, 1) {
					s.queue = s.queue[:0]
					return false
				}
			}
		}
	}
	return true
}

func (s *searcher) assignAndPropagate(v Var, val int8) bool {
	s.queue = s.queue[:0]
	if !s.set(v, val) {
		return false
	}
	return s.drainQueue()
}

func (s *searcher) undoTo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		val := s.assign[v]
		s.assign[v] = unset
		for _, o := range s.occ[v] {
			s.sumOpen[o.constr] += o.coef
			if val == 1 {
				s.sumTrue[o.constr] -= o.coef
			}
		}
		if w := s.objCoef[v]; w != 0 {
			s.objOpen += w
			if val == 1 {
				s.objTrue -= w
			}
		}
	}
}

// pickBranchVar selects the next decision variable. Constraints still short of
// their lower bound are served first, fewest open variables first, so demand
// equalities collapse one at a time instead of being rediscovered deep in the
// tree. Once nothing demands more true variables, the heaviest open objective
// variable is branched to spend the remaining objective weight.
func (s *searcher) pickBranchVar() Var {
	picked := Var(-1)
	pickedOpen := int(^uint(0) >> 1)
	for ci := range s.m.constrs {
		c := &s.m.constrs[ci]
		if s.sumTrue[ci] >= c.lo {
			continue
		}
		open := 0
		for _, t := range c.terms {
			if s.assign[t.Var] == unset {
				open++
			}
		}
		if open == 0 || open >= pickedOpen {
			continue
		}
		pickedOpen = open
		picked = s.pickFromConstraint(ci)
	}
	if picked >= 0 {
		return picked
	}

	heaviest := Var(-1)
	weight := int64(-1)
	for i := 0; i < s.m.numVars; i++ {
		if s.assign[i] == unset && s.objCoef[i] > weight {
			weight = s.objCoef[i]
			heaviest = Var(i)
		}
	}
	return heaviest
}

// pickFromConstraint chooses the open variable of an unsatisfied constraint
// with the most headroom, breaking ties by objective weight and then by index
// for determinism.
func (s *searcher) pickFromConstraint(ci int) Var {
	c := &s.m.constrs[ci]
	best := Var(-1)
	bestRoom := int64(-1) << 62
	bestWeight := int64(-1)
	for _, t := range c.terms {
		if s.assign[t.Var] != unset {
			continue
		}
		room := s.headroom(t.Var)
		if room > bestRoom || (room == bestRoom && s.objCoef[t.Var] > bestWeight) {
			bestRoom = room
			bestWeight = s.objCoef[t.Var]
			best = t.Var
		}
	}
	return best
}

// headroom totals the upper-bound slack the variable would leave across its
// constraints if set true. A larger value means the capacity limits it sits
// under are less consumed, so preferring it spreads load instead of exhausting
// one capacity constraint and backtracking out of the hole later.
func (s *searcher) headroom(v Var) int64 {
	var room int64
	for _, o := range s.occ[v] {
		c := &s.m.constrs[o.constr]
		room += c.hi - s.sumTrue[o.constr] - o.coef
	}
	return room
}

// dfs explores the remaining assignment space. It returns true when the
// subtree was searched exhaustively, false when the deadline or context cut
// the search short.
func (s *searcher) dfs() bool {
	s.nodes++
	if s.nodes%checkEvery == 0 {
		if time.Now().After(s.deadline) || s.ctx.Err() != nil {
			s.stopped = true
		}
	}
	if s.stopped {
		return false
	}

	// Bound pruning: the best completion of this branch cannot beat the incumbent.
	if s.hasIncumbent && s.objTrue+s.objOpen <= s.bestObj {
		return true
	}

	v := s.pickBranchVar()
	if v < 0 {
		s.record()
		return true
	}

	// True first: assignments carry the objective weight, so the first descent
	// doubles as a propagation-guided greedy pass that plants an incumbent.
	for _, val := range [2]int8{1, 0} {
		mark := len(s.trail)
		if s.assignAndPropagate(v, val) {
			if !s.dfs() {
				s.undoTo(mark)
				return false
			}
		}
		s.undoTo(mark)
	}
	return true
}

func (s *searcher) record() {
	if s.hasIncumbent && s.objTrue <= s.bestObj {
		return
	}
	values := make([]bool, len(s.assign))
	for i, val := range s.assign {
		values[i] = val == 1
	}
	s.hasIncumbent = true
	s.bestObj = s.objTrue
	s.bestValues = values
}
