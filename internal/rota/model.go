package rota

import (
	"github.com/shiftwise/rota-api/pkg/cpsolver"
)

const (
	openingHeadcount = 3
	middleHeadcount  = 2
	windowMinStaff   = 5

	// preferenceWeight makes one honored shift preference worth about two
	// hours of scheduled work in objective units, so preferences act as a
	// tiebreaker on top of budget utilization.
	preferenceWeight = 20
)

// Model owns the decision variables for one roster period: one boolean per
// (employee, day, shift) triple, plus every hard constraint and the objective.
// A Model is built fresh per generation request and solved exactly once.
type Model struct {
	cp        *cpsolver.Model
	employees []Employee
	period    Period
	cal       *Calendar
	vars      [][][]cpsolver.Var // [employee][day][shift]
}

// BuildModel encodes the full rota constraint set. Building never fails; an
// inconsistent constraint set is only detected at solve time.
func BuildModel(employees []Employee, period Period, constraints []Constraint) *Model {
	cal := NewCalendar(period.StartDate, period.NumDays)
	numDays := cal.NumDays()

	m := &Model{
		cp:        cpsolver.NewModel(),
		employees: employees,
		period:    period,
		cal:       cal,
	}

	m.vars = make([][][]cpsolver.Var, len(employees))
	for e := range employees {
		m.vars[e] = make([][]cpsolver.Var, numDays)
		for d := 0; d < numDays; d++ {
			m.vars[e][d] = make([]cpsolver.Var, numShiftTypes)
			for _, s := range ShiftTypes {
				m.vars[e][d][s] = m.cp.NewBool()
			}
		}
	}

	m.addCoverage()
	m.addManagerCoverage()
	m.addOneShiftPerDay()
	m.addWeeklyHourCaps()
	m.addFlexEligibility()
	m.addClopeningBans()
	m.addDailyBudgets()
	m.addRequestConstraints(constraints)
	m.composeObjective()

	return m
}

// Calendar exposes the period calendar the model was built against.
func (m *Model) Calendar() *Calendar {
	return m.cal
}

// Employees exposes the employee snapshot the model was built against.
func (m *Model) Employees() []Employee {
	return m.employees
}

// Period exposes the roster period the model was built against.
func (m *Model) Period() Period {
	return m.period
}

func (m *Model) shiftVars(day int, s ShiftType) []cpsolver.Var {
	vars := make([]cpsolver.Var, 0, len(m.employees))
	for e := range m.employees {
		vars = append(vars, m.vars[e][day][s])
	}
	return vars
}

// addCoverage emits the headcount equalities for the three core shifts and the
// lunch/dinner window minimums.
func (m *Model) addCoverage() {
	for d := 0; d < m.cal.NumDays(); d++ {
		m.cp.AddExactly(m.shiftVars(d, ShiftOpening), openingHeadcount)
		m.cp.AddExactly(m.shiftVars(d, ShiftMiddle), middleHeadcount)
		m.cp.AddExactly(m.shiftVars(d, ShiftClosing), int64(m.period.ClosingStaffFor(d)))

		lunch := append(m.shiftVars(d, ShiftOpening), m.shiftVars(d, ShiftMiddle)...)
		lunch = append(lunch, m.shiftVars(d, ShiftPeakLunch)...)
		m.cp.AddAtLeast(lunch, windowMinStaff)

		dinner := append(m.shiftVars(d, ShiftMiddle), m.shiftVars(d, ShiftClosing)...)
		dinner = append(dinner, m.shiftVars(d, ShiftPeakDinner)...)
		m.cp.AddAtLeast(dinner, windowMinStaff)
	}
}

// addManagerCoverage requires at least one Manager or GeneralManager on both
// Opening and Closing every day. With no managerial staff in the snapshot the
// empty sum makes the model provably infeasible, which is the intended signal.
func (m *Model) addManagerCoverage() {
	for d := 0; d < m.cal.NumDays(); d++ {
		var opening, closing []cpsolver.Var
		for e, emp := range m.employees {
			if !emp.Role.IsManagerial() {
				continue
			}
			opening = append(opening, m.vars[e][d][ShiftOpening])
			closing = append(closing, m.vars[e][d][ShiftClosing])
		}
		m.cp.AddAtLeast(opening, 1)
		m.cp.AddAtLeast(closing, 1)
	}
}

func (m *Model) addOneShiftPerDay() {
	for e := range m.employees {
		for d := 0; d < m.cal.NumDays(); d++ {
			m.cp.AddAtMost(m.vars[e][d], 1)
		}
	}
}

// addWeeklyHourCaps bounds each employee's scheduled duration over the whole
// period, in tenths of an hour.
func (m *Model) addWeeklyHourCaps() {
	for e, emp := range m.employees {
		var terms []cpsolver.Term
		for d := 0; d < m.cal.NumDays(); d++ {
			for _, s := range ShiftTypes {
				terms = append(terms, cpsolver.Term{Var: m.vars[e][d][s], Coef: s.DurationTenths()})
			}
		}
		maxTenths := int64(emp.MaxWeeklyHours*10 + 0.5)
		m.cp.AddLinear(terms, 0, maxTenths)
	}
}

func (m *Model) addFlexEligibility() {
	for e, emp := range m.employees {
		if emp.FlexibleHours {
			continue
		}
		for d := 0; d < m.cal.NumDays(); d++ {
			for _, s := range ShiftTypes {
				if s.FlexOnly() {
					m.cp.FixFalse(m.vars[e][d][s])
				}
			}
		}
	}
}

// addClopeningBans forbids a Closing shift immediately followed by an Opening
// shift the next day.
func (m *Model) addClopeningBans() {
	for e := range m.employees {
		for d := 0; d+1 < m.cal.NumDays(); d++ {
			m.cp.AddAtMost([]cpsolver.Var{m.vars[e][d][ShiftClosing], m.vars[e][d+1][ShiftOpening]}, 1)
		}
	}
}

// addDailyBudgets caps the duration-weighted sum of assignments per day,
// excluding GeneralManager hours from the spend.
func (m *Model) addDailyBudgets() {
	for d := 0; d < m.cal.NumDays(); d++ {
		var terms []cpsolver.Term
		for e, emp := range m.employees {
			if emp.Role == RoleGeneralManager {
				continue
			}
			for _, s := range ShiftTypes {
				terms = append(terms, cpsolver.Term{Var: m.vars[e][d][s], Coef: s.DurationTenths()})
			}
		}
		m.cp.AddLinear(terms, 0, m.period.BudgetTenthsFor(d))
	}
}

// addRequestConstraints pins compiled requests as hard equalities: a forced-off
// day fixes the employee's whole day to zero, a forced-on pins one variable.
func (m *Model) addRequestConstraints(constraints []Constraint) {
	empIndex := make(map[string]int, len(m.employees))
	for e, emp := range m.employees {
		empIndex[emp.ID] = e
	}
	for _, c := range constraints {
		e, ok := empIndex[c.EmployeeID]
		if !ok || c.Day < 0 || c.Day >= m.cal.NumDays() {
			continue
		}
		if c.ForceOn {
			m.cp.FixTrue(m.vars[e][c.Day][c.Shift])
		} else {
			m.cp.AddAtMost(m.vars[e][c.Day], 0)
		}
	}
}

// composeObjective maximizes scheduled duration plus the preference bonus.
func (m *Model) composeObjective() {
	var terms []cpsolver.Term
	for e, emp := range m.employees {
		for d := 0; d < m.cal.NumDays(); d++ {
			for _, s := range ShiftTypes {
				weight := s.DurationTenths()
				if emp.Prefers(s) {
					weight += preferenceWeight
				}
				terms = append(terms, cpsolver.Term{Var: m.vars[e][d][s], Coef: weight})
			}
		}
	}
	m.cp.Maximize(terms)
}
